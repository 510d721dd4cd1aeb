package model

// AliasType tags what kind of identifier an alias points at.
type AliasType string

const (
	AliasGame     AliasType = "game"
	AliasCategory AliasType = "category"
)

// CategoryAliasDelimiter separates the owning game's alias from the rest of a category
// alias, e.g. "dkc2-anypercent" belongs to the game aliased "dkc2".
const CategoryAliasDelimiter = "-"

// Alias binds a short human-chosen string to one game or category ID.
type Alias struct {
	Alias string    `db:"alias" json:"alias"`
	Type  AliasType `db:"type" json:"type"`
	ID    string    `db:"id" json:"id"`
}

// AliasTarget is the right-hand side of an alias, used for bulk inserts.
type AliasTarget struct {
	Type AliasType
	ID   string
}

// Resource is free-text content (guides, links, routes) attached to a game alias.
type Resource struct {
	Name      string `db:"resource" json:"resource"`
	GameAlias string `db:"game_alias" json:"game_alias"`
	Content   string `db:"content" json:"content"`
}

// Settings is the single row of bot-wide settings.
type Settings struct {
	AllowedGameList string `db:"allowed_game_list" json:"allowed_game_list"`
	StreamChannelID string `db:"stream_channel_id" json:"stream_channel_id"`
	StreamerRole    string `db:"streamer_role" json:"streamer_role"`
	ExcludeKeywords string `db:"exclude_keywords" json:"exclude_keywords"`
}
