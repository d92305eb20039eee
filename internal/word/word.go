package word

import (
	"bytes"
	"fmt"
	"time"
)

// UnsavedID marks a word or image that has no storage row yet
const UnsavedID int64 = -1

// Image is the illustration attached to a noun.
// Width and Height describe the original image and bound any scaling.
// Data stays empty until the image bytes have been downloaded.
type Image struct {
	ID     int64
	URL    string
	Width  int
	Height int
	Data   []byte
}

// Equal compares every field of two images
func (i Image) Equal(o Image) bool {
	return i.ID == o.ID &&
		i.URL == o.URL &&
		i.Width == o.Width &&
		i.Height == o.Height &&
		bytes.Equal(i.Data, o.Data)
}

// Clone returns a copy that shares no memory with i
func (i Image) Clone() Image {
	c := i
	if i.Data != nil {
		c.Data = bytes.Clone(i.Data)
	}
	return c
}

// HasData reports whether the image bytes are present
func (i Image) HasData() bool {
	return len(i.Data) > 0
}

func (i Image) String() string {
	return fmt.Sprintf("[%d ; %s ; %dx%d ; %d bytes]", i.ID, i.URL, i.Width, i.Height, len(i.Data))
}

// Word is a dictionary entry. Text fields hold the markup the dictionary
// returned; use Plain for display.
type Word struct {
	ID            int64
	Name          string
	Transcription string
	Translation   string
	Association   string
	Etymology     string
	Description   string
	Type          Type
	Image         Image
	Date          time.Time
}

// Empty is the "nothing resolved yet" word
var Empty = Word{ID: UnsavedID, Type: Unknown}

// HasImage reports whether the word owns an image. Only nouns do.
func (w Word) HasImage() bool {
	return w.Type == Noun
}

// IsEmpty reports whether w is structurally the Empty sentinel
func (w Word) IsEmpty() bool {
	return w.Equal(Empty)
}

// IsSaved reports whether w has a storage row
func (w Word) IsSaved() bool {
	return w.ID > 0
}

// Equal compares every field of two words. Dates are compared as instants.
func (w Word) Equal(o Word) bool {
	return w.ID == o.ID &&
		w.Name == o.Name &&
		w.Transcription == o.Transcription &&
		w.Translation == o.Translation &&
		w.Association == o.Association &&
		w.Etymology == o.Etymology &&
		w.Description == o.Description &&
		w.Type == o.Type &&
		w.Image.Equal(o.Image) &&
		w.Date.Equal(o.Date)
}

// Clone returns a deep copy of w
func (w Word) Clone() Word {
	c := w
	c.Image = w.Image.Clone()
	return c
}

func (w Word) String() string {
	return fmt.Sprintf("[%d ; %s ; %s ; %s ; %s]", w.ID, w.Name, w.Type, w.Image, w.Date.Format(time.RFC3339))
}
