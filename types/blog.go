package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// BlogPost is a published article as stored in the blog collection.
type BlogPost struct {
	// ID is assigned on creation as one more than the largest existing ID.
	ID int `json:"id" db:"id"`

	Title    string `json:"title" db:"title"`
	Subtitle string `json:"subtitle" db:"subtitle"`
	Category string `json:"category" db:"category"`
	Content  string `json:"content" db:"content"`

	// ReadingTime is free-form, e.g. "5" or "5 min".
	ReadingTime ReadingTime `json:"readingTime" db:"reading_time"`

	// ImagePath is the stored file name of the post image, served under /images/.
	ImagePath string `json:"imagePath" db:"image_path"`
}

// ReadingTime accepts either a JSON string or a JSON number and always
// encodes as a string.
type ReadingTime string

func (r *ReadingTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ReadingTime(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = ReadingTime(n.String())
	return nil
}

// Minutes returns the numeric value of the reading time when it has one.
func (r ReadingTime) Minutes() (float64, bool) {
	v, err := strconv.ParseFloat(string(r), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
