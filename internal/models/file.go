package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileRecord is the metadata document kept for one externally stored file.
type FileRecord struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	Filename   string                 `bson:"filename" json:"filename"`
	FileType   string                 `bson:"file_type" json:"file_type"`
	UploadedAt time.Time              `bson:"uploaded_at" json:"uploaded_at"`
	Extra      map[string]interface{} `bson:",inline" json:"extra,omitempty"`
}

// SeedEntry is one configured (filename, file_type) pair.
type SeedEntry struct {
	Filename string `yaml:"filename"`
	FileType string `yaml:"file_type"`
}

// BinaryFile is the projection read from the binary bucket's files collection.
type BinaryFile struct {
	Filename   string    `bson:"filename"`
	Length     int64     `bson:"length"`
	UploadDate time.Time `bson:"uploadDate"`
}

type UpsertResult struct {
	Matched  int64
	Modified int64
	Upserted int64
}
