package messaging

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gitlab.com/dirk.krummacker/careteam-service/internal/phonenumber"
)

// ErrEmptyBody is returned when an SMS is composed without any text.
var ErrEmptyBody = errors.New("message body cannot be empty")

// SegmentInfo reports how an SMS body splits into wire segments.
type SegmentInfo struct {
	Characters int `json:"characters"`
	Segments   int `json:"segments"`
}

// CalculateSegments applies the standard segmentation rules: a message of
// up to 160 characters fits one segment; longer messages are split into
// 153-character segments because 7 characters go to the concatenation
// header.
func CalculateSegments(body string) SegmentInfo {
	length := utf8.RuneCountInString(body)
	switch {
	case length == 0:
		return SegmentInfo{}
	case length <= 160:
		return SegmentInfo{Characters: length, Segments: 1}
	default:
		return SegmentInfo{Characters: length, Segments: (length + 152) / 153}
	}
}

// SMSCompose is a ready-to-open sms: URI plus its segment breakdown.
type SMSCompose struct {
	URI      string      `json:"uri"`
	Segments SegmentInfo `json:"segments"`
}

// SMSMessenger composes SMS messages for contacts. Actual delivery is
// left to the device opening the URI.
type SMSMessenger struct {
	Provider string
}

// Compose validates the phone number, rejects empty bodies and returns
// the sms: URI with segment info.
func (m *SMSMessenger) Compose(phone string, body string) (SMSCompose, error) {
	number, err := phonenumber.New(phone)
	if err != nil {
		return SMSCompose{}, err
	}
	if strings.TrimSpace(body) == "" {
		return SMSCompose{}, ErrEmptyBody
	}
	return SMSCompose{
		URI:      number.SMSURI(body),
		Segments: CalculateSegments(body),
	}, nil
}

// VoiceURI validates the phone number and returns its tel: URI.
func VoiceURI(phone string) (string, error) {
	number, err := phonenumber.New(phone)
	if err != nil {
		return "", err
	}
	return number.VoiceURI(), nil
}
