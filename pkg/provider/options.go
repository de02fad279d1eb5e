package provider

// SendOptions enumerates every recognized per-call override. It replaces
// open-ended keyword maps so options are validated at the boundary.
//
// The zero value sends with channel defaults only.
type SendOptions struct {
	// Channels overrides the default channel list; each entry is a
	// canonical channel name or an alias. Empty means use the defaults.
	Channels []string

	// SuppressErrors captures per-channel vendor failures as failure
	// Responses instead of returned errors.
	SuppressErrors bool

	// Recipient overrides. Accepted forms are those of the recipient
	// processors: a single address string, a "|"-delimited string, a
	// []string, an entity.Entity, or a []entity.Entity.
	To  interface{}
	Cc  interface{}
	Bcc interface{}

	// Email options.
	Subject       string
	HTML          string
	Tags          []string
	Attachments   []string
	Inline        []string
	RecipientData map[string]interface{}
	Tracking      bool
	TestMode      bool

	// Chat options.
	ToChannel string
	IconEmoji string

	// Shared media file list (email inline images, MMS, social posts).
	Media []string

	// Social options.
	DM bool
}

// Clone returns a shallow copy so per-channel mutation never leaks into
// the caller's options.
func (o *SendOptions) Clone() *SendOptions {
	if o == nil {
		return &SendOptions{}
	}
	dup := *o
	return &dup
}
