package domain

// Action enumerates the operations the policy decides on. Channel creation
// and join/leave are open to any authenticated user and are not listed here.
type Action string

const (
	ActionPost   Action = "post"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// CanPost reports whether actor may post to the channel: membership at the
// instant of posting, never re-checked retroactively.
func CanPost(actor string, channel Channel) bool {
	return channel.IsMember(actor)
}

// CanAct is the single policy consulted before any guarded mutation.
// Posting is decided on the channel's member set, editing and deleting on
// message ownership.
func CanAct(actor string, channel Channel, message Message, action Action) bool {
	switch action {
	case ActionPost:
		return CanPost(actor, channel)
	case ActionEdit, ActionDelete:
		return message.Sender == actor
	default:
		return false
	}
}
