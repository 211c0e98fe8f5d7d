package domain

type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
	ReactionNone    Reaction = "none"
)

// FeedPost is a post annotated with the viewer's reaction and save state.
// IsSaved is nil for personal posts, which cannot be saved.
type FeedPost struct {
	Kind     PostKind `json:"kind"`
	Post     FeedItem `json:"post"`
	Reaction Reaction `json:"reaction"`
	IsSaved  *bool    `json:"is_saved,omitempty"`
}
