package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/blt/internal/app/service"
)

// ErrInvalidPayload is returned when a consume body is not a JSON object or a
// known field has the wrong type.
var ErrInvalidPayload = errors.New("invalid beacon payload")

// Lower-cased parameter names bound to BeaconInput fields. Any other name is
// harvested as an extra attribute.
const (
	paramPageToken   = "pagetoken"
	paramCampaignID  = "campaignid"
	paramActionID    = "actionid"
	paramAttributeID = "attributeid"
	paramAttrValue   = "attrvalue"
	paramUID         = "uid"
	paramSession     = "session"
)

var reservedParams = map[string]struct{}{
	paramPageToken:   {},
	paramCampaignID:  {},
	paramActionID:    {},
	paramAttributeID: {},
	paramAttrValue:   {},
	paramUID:         {},
	paramSession:     {},
}

// IsReservedParam reports whether name (any case) is a standard tracking parameter.
func IsReservedParam(name string) bool {
	_, ok := reservedParams[strings.ToLower(name)]
	return ok
}

// PixelInput builds a BeaconInput from the query string. Parameter names are
// matched case-insensitively. A malformed id is reported through DecodeErr so
// the attempt is still traced.
func PixelInput(c *fiber.Ctx) service.BeaconInput {
	in := service.BeaconInput{StashType: service.StashTypePixel}

	var problems []string
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		// VisitAll hands out fiber owned buffers.
		if err := assign(&in, string(key), string(value)); err != nil {
			problems = append(problems, err.Error())
		}
	})
	if len(problems) > 0 {
		in.DecodeErr = fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(problems, "; "))
	}
	return in
}

// ConsumeInput builds a BeaconInput from a JSON object body. Field names are
// matched case-insensitively and ids may be JSON numbers or numeric strings.
func ConsumeInput(body []byte) service.BeaconInput {
	in := service.BeaconInput{StashType: service.StashTypeConsume}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		in.DecodeErr = fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		return in
	}
	if fields == nil {
		in.DecodeErr = fmt.Errorf("%w: body must be a JSON object", ErrInvalidPayload)
		return in
	}

	// Keys that differ only in case map to the same field; sorted order makes
	// the last one in byte order win on every request.
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var problems []string
	for _, key := range keys {
		raw := fields[key]
		value, err := scalarString(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		if err := assign(&in, key, value); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		in.DecodeErr = fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(problems, "; "))
	}
	return in
}

func assign(in *service.BeaconInput, key, value string) error {
	switch strings.ToLower(key) {
	case paramPageToken:
		in.PageToken = value
	case paramCampaignID:
		id, err := parseID(value)
		if err != nil {
			return fmt.Errorf("campaignId: %w", err)
		}
		in.CampaignID = id
	case paramActionID:
		id, err := parseID(value)
		if err != nil {
			return fmt.Errorf("actionId: %w", err)
		}
		in.ActionID = id
	case paramAttributeID:
		in.AttributeID = value
	case paramAttrValue:
		in.AttrValue = value
	case paramUID:
		in.UID = value
	case paramSession:
		in.SessionID = value
	default:
		if key == "" {
			return nil
		}
		if in.Extra == nil {
			in.Extra = make(map[string]string)
		}
		in.Extra[key] = value
	}
	return nil
}

// parseID treats an empty value as unset so validation reports it.
func parseID(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", value)
	}
	return id, nil
}

func scalarString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", errors.New("expected a scalar value")
	}
}
