package enums

import "fmt"

// NoticeChannel maps to the auction_notice_channel enum in Postgres.
type NoticeChannel string

const (
	NoticeChannelEmail          NoticeChannel = "email"
	NoticeChannelSMS            NoticeChannel = "sms"
	NoticeChannelMail           NoticeChannel = "mail"
	NoticeChannelRegisteredMail NoticeChannel = "registered_mail"
)

var validNoticeChannels = []NoticeChannel{
	NoticeChannelEmail,
	NoticeChannelSMS,
	NoticeChannelMail,
	NoticeChannelRegisteredMail,
}

// String implements fmt.Stringer.
func (c NoticeChannel) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c NoticeChannel) IsValid() bool {
	for _, candidate := range validNoticeChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseNoticeChannel converts raw input into a NoticeChannel.
func ParseNoticeChannel(value string) (NoticeChannel, error) {
	for _, candidate := range validNoticeChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notice channel %q", value)
}
