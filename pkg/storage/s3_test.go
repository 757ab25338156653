package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/config"
)

func Test_s3Storage_generateUploadURL(t *testing.T) {
	s, err := NewS3Storage(config.S3Configs{
		Region:         "us-east-1",
		Endpoint:       "http://localhost:9000",
		PublicEndpoint: "http://cdn.local/",
		AccessKey:      "key",
		SecretKey:      "secret",
	})
	require.NoError(t, err)

	resp := s.generateUploadURL(&UploadObject{
		Bucket: "campaign-images",
		Folder: "/rooms/room1/",
		Name:   "map.png",
	})

	require.True(t, strings.HasPrefix(resp.Key, "rooms/room1/"))
	require.True(t, strings.HasSuffix(resp.Key, "-map.png"))
	require.Equal(t, "http://cdn.local/campaign-images/"+resp.Key, resp.URL)
}

func Test_s3Storage_objectKey(t *testing.T) {
	s, err := NewS3Storage(config.S3Configs{
		Region:         "us-east-1",
		Endpoint:       "http://localhost:9000",
		PublicEndpoint: "http://cdn.local",
	})
	require.NoError(t, err)

	resp := s.generateUploadURL(&UploadObject{Bucket: "maps", Folder: "maps", Name: "crypt.png"})
	key, ok := s.objectKey("maps", resp.URL)
	require.True(t, ok)
	require.Equal(t, resp.Key, key)

	_, ok = s.objectKey("portraits", resp.URL)
	require.False(t, ok)

	_, ok = s.objectKey("maps", "https://elsewhere.test/maps/crypt.png")
	require.False(t, ok)
}
