package models

import "time"

// BlockType identifies a typed rich-text block inside a journal entry
type BlockType string

const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockToDo             BlockType = "to_do"
	BlockQuote            BlockType = "quote"
	BlockCallout          BlockType = "callout"
	BlockCode             BlockType = "code"
	BlockDivider          BlockType = "divider"
)

// ContentBlock is a single typed block of journal entry content
type ContentBlock struct {
	ID       string    `json:"id"`
	Type     BlockType `json:"type"`
	Text     string    `json:"text,omitempty"`
	Level    int       `json:"level,omitempty"`
	Checked  bool      `json:"checked,omitempty"`
	Icon     string    `json:"icon,omitempty"`
	Language string    `json:"language,omitempty"`
}

// JournalEntry is an externally-sourced journal record. The service never
// creates or mutates these; it only filters, searches, and aggregates the
// list supplied by the sync feed.
type JournalEntry struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date,omitempty"` // ISO date, may be empty
	Mood         *int           `json:"mood,omitempty"` // 1-10
	SleepQuality string         `json:"sleep_quality,omitempty"`
	Priority     []string       `json:"priority,omitempty"`
	Content      []ContentBlock `json:"content"`
	NotionURL    string         `json:"notion_url,omitempty"`
	LastEdited   time.Time      `json:"last_edited"`
	CreatedTime  time.Time      `json:"created_time"`
}

// JournalData is one snapshot from the sync feed
type JournalData struct {
	Entries      []JournalEntry `json:"entries"`
	LastSync     time.Time      `json:"last_sync"`
	TotalEntries int            `json:"total_entries"`
}
