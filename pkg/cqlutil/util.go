package cqlutil

import (
	"time"

	"github.com/gocql/gocql"
	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/gocqlx/v2/qb"
	"github.com/scylladb/gocqlx/v2/table"
)

func CreateCluster(keyspace string, hosts ...string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		Min:        time.Second,
		Max:        10 * time.Second,
		NumRetries: 5,
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	return cluster
}

func Insert(session gocqlx.Session, tbl *table.Table, data any) error {
	stmt, names := tbl.Insert()
	return session.Query(stmt, names).BindStruct(data).ExecRelease()
}

// Select returns rows matching filter on the given comparators, newest first
// when the table sort key is descending.
func Select[T any](
	session gocqlx.Session,
	tbl *table.Table,
	filter any,
	limit uint,
	w ...qb.Cmp,
) ([]T, error) {
	var result []T
	metadata := tbl.Metadata()

	stmt, names := qb.Select(metadata.Name).
		Columns(metadata.Columns...).
		Where(w...).
		Limit(limit).
		ToCql()
	err := session.Query(stmt, names).BindStruct(filter).SelectRelease(&result)
	if err != nil {
		return nil, err
	}

	return result, nil
}
