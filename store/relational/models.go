package relational

import (
	"strconv"

	"github.com/jacentio/onetable/store"
)

type blogRecord struct {
	ID    uint         `gorm:"primaryKey"`
	Name  string       `gorm:"size:255;not null"`
	Slug  string       `gorm:"size:255;not null;uniqueIndex"`
	Posts []postRecord `gorm:"foreignKey:BlogID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (blogRecord) TableName() string { return "blogs" }

type postRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:255;not null"`
	Content   string `gorm:"type:text;not null"`
	ViewCount int    `gorm:"not null;default:0"`
	BlogID    uint   `gorm:"not null;index"`
}

func (postRecord) TableName() string { return "posts" }

// Models lists every table the adapter uses, in dependency order.
func Models() []any {
	return []any{&blogRecord{}, &postRecord{}}
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// parseID converts a contract identity into a serial. ok is false for values
// the relational backend could never have issued. Serial columns are signed
// 64-bit, so anything above math.MaxInt64 is out of range.
func parseID(id string) (uint, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}

func (r *blogRecord) toBlog() *store.Blog {
	return &store.Blog{
		ID:   formatID(r.ID),
		Name: r.Name,
		Slug: r.Slug,
	}
}

func (r *postRecord) toPost() store.Post {
	return store.Post{
		ID:        formatID(r.ID),
		Title:     r.Title,
		Content:   r.Content,
		ViewCount: r.ViewCount,
		BlogID:    formatID(r.BlogID),
	}
}
