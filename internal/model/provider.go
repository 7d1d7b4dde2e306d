package model

// Provider identifies the chat platform a message arrived on and must be replied through.
type Provider string

const (
	ProviderTwilio Provider = "twilio"
	ProviderMeta   Provider = "meta"
)

func (p Provider) String() string {
	return string(p)
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	return p == ProviderTwilio || p == ProviderMeta
}
