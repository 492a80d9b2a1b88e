package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// RecordInput is a request body for one category. Record validates the decoded
// body and converts it into a storable record.
type RecordInput interface {
	Record(acceptedAt time.Time) (Record, error)
}

// NewInput returns an empty body for the category, ready to be decoded into.
func NewInput(c Category) (RecordInput, error) {
	switch c {
	case CategoryPresignedURL:
		return &PresignedURLInput{}, nil
	case CategoryLogin:
		return &LoginInput{}, nil
	default:
		return nil, fmt.Errorf("%w: '%s' is not one of %v", ErrUnknownCategory, c, Categories())
	}
}

// AuditInput is the body shape shared by all categories.
// Timestamp is unix seconds; when omitted the acceptance time is used.
type AuditInput struct {
	RequestURL     *string         `json:"request_url" binding:"required"`
	StatusCode     *int            `json:"status_code" binding:"required"`
	Timestamp      json.Number     `json:"timestamp"`
	Username       *string         `json:"username" binding:"required"`
	Sub            *int64          `json:"sub"`
	AdditionalData json.RawMessage `json:"additional_data"`
}

type PresignedURLInput struct {
	AuditInput
	GUID          *string  `json:"guid" binding:"required"`
	ResourcePaths []string `json:"resource_paths"`
	Action        *string  `json:"action" binding:"required"`
	Protocol      *string  `json:"protocol"`
	JTI           *string  `json:"jti"`
	Passport      *bool    `json:"passport"`
}

func (in *PresignedURLInput) Record(acceptedAt time.Time) (Record, error) {
	base, err := in.auditRecord(acceptedAt)
	if err != nil {
		return nil, err
	}
	log := &PresignedURLLog{
		AuditRecord:   base,
		GUID:          *in.GUID,
		ResourcePaths: in.ResourcePaths,
		Action:        *in.Action,
		Protocol:      in.Protocol,
		JTI:           in.JTI,
		Passport:      in.Passport,
	}
	if err := log.Validate(); err != nil {
		return nil, err
	}
	return log, nil
}

type LoginInput struct {
	AuditInput
	IDP      *string `json:"idp" binding:"required"`
	FenceIDP *string `json:"fence_idp"`
	ShibIDP  *string `json:"shib_idp"`
	ClientID *string `json:"client_id"`
	IP       *string `json:"ip"`
}

func (in *LoginInput) Record(acceptedAt time.Time) (Record, error) {
	base, err := in.auditRecord(acceptedAt)
	if err != nil {
		return nil, err
	}
	return &LoginLog{
		AuditRecord: base,
		IDP:         *in.IDP,
		FenceIDP:    in.FenceIDP,
		ShibIDP:     in.ShibIDP,
		ClientID:    in.ClientID,
		IP:          in.IP,
	}, nil
}

func (in *AuditInput) auditRecord(acceptedAt time.Time) (AuditRecord, error) {
	if in.RequestURL == nil || in.StatusCode == nil || in.Username == nil {
		return AuditRecord{}, fmt.Errorf("%w: request_url, status_code and username are required", ErrInvalidField)
	}

	ts, err := in.timestamp(acceptedAt)
	if err != nil {
		return AuditRecord{}, err
	}

	data, err := decodeAdditionalData(in.AdditionalData)
	if err != nil {
		return AuditRecord{}, err
	}

	return AuditRecord{
		RequestURL:     *in.RequestURL,
		StatusCode:     *in.StatusCode,
		Timestamp:      ts,
		Username:       *in.Username,
		Sub:            in.Sub,
		AdditionalData: data,
	}, nil
}

// timestamp treats a missing or zero value as "now".
func (in *AuditInput) timestamp(acceptedAt time.Time) (time.Time, error) {
	if in.Timestamp == "" {
		return acceptedAt.UTC().Truncate(time.Second), nil
	}

	sec, err := in.Timestamp.Int64()
	if err != nil {
		f, ferr := in.Timestamp.Float64()
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < minUnixSeconds || f > maxUnixSeconds {
			return time.Time{}, fmt.Errorf("%w: '%s'", ErrInvalidTimestamp, in.Timestamp)
		}
		sec = int64(f)
	}
	if sec == 0 {
		return acceptedAt.UTC().Truncate(time.Second), nil
	}
	return TimeFromUnix(sec)
}

func decodeAdditionalData(raw json.RawMessage) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidAdditionalData)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAdditionalData, err)
	}
	return data, nil
}
