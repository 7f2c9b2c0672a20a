package pag

import "strings"

// Action is what a Button does to the Navigator it belongs to.
type Action int

const (
	// ActionBackward turns to the previous page.
	ActionBackward Action = iota
	// ActionForward turns to the next page.
	ActionForward
	// ActionClose closes the Navigator and deletes its message.
	ActionClose
	// ActionFirst turns to the first page.
	ActionFirst
	// ActionLast turns to the last page.
	ActionLast
	// ActionBack10 turns back ten pages.
	ActionBack10
	// ActionForward10 turns forward ten pages.
	ActionForward10
	// ActionShare lets anyone turn pages, or gives control back to the owner alone.
	// Only the owner can use it.
	ActionShare
)

// String returns a human-readable name of the action.
func (a Action) String() string {
	switch a {
	case ActionBackward:
		return "backward"
	case ActionForward:
		return "forward"
	case ActionClose:
		return "close"
	case ActionFirst:
		return "first"
	case ActionLast:
		return "last"
	case ActionBack10:
		return "back10"
	case ActionForward10:
		return "forward10"
	case ActionShare:
		return "share"
	default:
		return "unknown"
	}
}

// target returns the page index this action turns to from current.
// The result is not wrapped; Navigator reduces it modulo the page count.
// ActionClose and ActionShare have no target and return current.
func (a Action) target(current int) int {
	switch a {
	case ActionBackward:
		return current - 1
	case ActionForward:
		return current + 1
	case ActionFirst:
		return 0
	case ActionLast:
		return -1
	case ActionBack10:
		return current - 10
	case ActionForward10:
		return current + 10
	default:
		return current
	}
}

// Emoji used by the bundled buttons.
const (
	EmojiFirst     = "⏮"
	EmojiBack10    = "⏪"
	EmojiBackward  = "◀"
	EmojiClose     = "\U0001f1fd"
	EmojiForward   = "▶"
	EmojiForward10 = "⏩"
	EmojiLast      = "⏭"
	EmojiShare     = "\U0001f465"
)

// Button binds a reaction emoji to an Action.
type Button struct {
	// Emoji is the unicode emoji, or "name:id" for a custom emoji.
	Emoji string

	// Action is performed when the owner reacts with Emoji.
	Action Action

	// MinPages is the page count required for the button to be shown.
	// Zero means the button is always shown.
	MinPages int

	// GuildOnly hides the button in direct messages.
	GuildOnly bool
}

// DefaultButtons returns the backward, close and forward buttons.
func DefaultButtons() []Button {
	return []Button{
		{Emoji: EmojiBackward, Action: ActionBackward},
		{Emoji: EmojiClose, Action: ActionClose},
		{Emoji: EmojiForward, Action: ActionForward},
	}
}

// ExtendedButtons returns DefaultButtons plus buttons to jump to either end and by ten pages,
// and a button for the owner to share control with everyone in the channel.
// The jump buttons only show up when there are enough pages for them to be useful.
func ExtendedButtons() []Button {
	return []Button{
		{Emoji: EmojiFirst, Action: ActionFirst, MinPages: 4},
		{Emoji: EmojiBack10, Action: ActionBack10, MinPages: 11},
		{Emoji: EmojiBackward, Action: ActionBackward},
		{Emoji: EmojiClose, Action: ActionClose},
		{Emoji: EmojiForward, Action: ActionForward},
		{Emoji: EmojiForward10, Action: ActionForward10, MinPages: 11},
		{Emoji: EmojiLast, Action: ActionLast, MinPages: 4},
		{Emoji: EmojiShare, Action: ActionShare, MinPages: 2, GuildOnly: true},
	}
}

// visibleButtons returns the buttons to display for the given page count.
func visibleButtons(buttons []Button, pageCount int, inGuild bool) []Button {
	visible := make([]Button, 0, len(buttons))
	for _, b := range buttons {
		if b.GuildOnly && !inGuild {
			continue
		}
		if b.MinPages <= pageCount {
			visible = append(visible, b)
		}
	}
	return visible
}

// normalizeEmoji strips the emoji presentation selector so that "▶" and "▶️" compare equal.
func normalizeEmoji(emoji string) string {
	return strings.ReplaceAll(emoji, "\ufe0f", "")
}
