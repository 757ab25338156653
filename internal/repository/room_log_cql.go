package repository

import (
	"context"
	"time"

	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/gocqlx/v2/qb"
	"github.com/scylladb/gocqlx/v2/table"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/cqlutil"
	"github.com/tavern-lab/backend/pkg/numberutil"
	"github.com/tavern-lab/backend/pkg/reflectutil"
)

// roomLogRecord is the scylla row of a room log. Rows are partitioned by
// room and time bucket and sorted by the snowflake id.
type roomLogRecord struct {
	ID        int64
	RoomID    string
	Bucket    int64
	Author    string
	Content   string
	CreatedAt time.Time
}

const maxScannedBuckets = 36

type roomLogCQLRepository struct {
	session gocqlx.Session
	tbl     *table.Table
}

func NewRoomLogCQLRepository(session gocqlx.Session) *roomLogCQLRepository {
	m := table.Metadata{
		Name:    "room_logs",
		Columns: reflectutil.GetColumnNames(&roomLogRecord{}),
		PartKey: []string{"room_id", "bucket"},
		SortKey: []string{"id"},
	}

	return &roomLogCQLRepository{
		session: session,
		tbl:     table.New(m),
	}
}

func (r *roomLogCQLRepository) Create(ctx context.Context, data *entity.RoomLog) error {
	return cqlutil.Insert(r.session, r.tbl, &roomLogRecord{
		ID:        data.ID,
		RoomID:    data.RoomID,
		Bucket:    numberutil.BucketFrom(data.ID),
		Author:    data.Author,
		Content:   data.Content,
		CreatedAt: data.CreatedAt,
	})
}

// GetLatest walks the buckets backwards from the current one until limit
// logs are collected.
func (r *roomLogCQLRepository) GetLatest(ctx context.Context, roomID string, limit int) ([]entity.RoomLog, error) {
	result := []entity.RoomLog{}
	bucket := numberutil.BucketFrom(0)

	for i := 0; i < maxScannedBuckets && len(result) < limit; i++ {
		records, err := cqlutil.Select[roomLogRecord](
			r.session,
			r.tbl,
			map[string]any{"room_id": roomID, "bucket": bucket},
			uint(limit-len(result)),
			qb.Eq("room_id"), qb.Eq("bucket"),
		)
		if err != nil {
			return nil, err
		}

		for _, record := range records {
			result = append(result, entity.RoomLog{
				SnowFlakeBase: entity.SnowFlakeBase{ID: record.ID, CreatedAt: record.CreatedAt},
				RoomID:        record.RoomID,
				Author:        record.Author,
				Content:       record.Content,
			})
		}

		bucket--
	}

	return result, nil
}
