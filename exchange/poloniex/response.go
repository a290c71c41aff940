package poloniex

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lukehollenback/bourse/exchange"
)

//
// status is the envelope the venue wraps errors and acknowledgements in.
//
type status struct {
	Error   *string         `json:"error"`
	Success json.RawMessage `json:"success"`
	Message string          `json:"message"`
}

//
// decode interprets a venue payload for command. Venue-reported errors are translated into the
// exchange error kinds; otherwise the payload is unmarshalled into v (if v is non-nil).
//
func decode(command string, body []byte, v any) error {
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
		var s status

		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decoding %s response: %w", command, err)
		}

		if s.Error != nil {
			return translateError(command, *s.Error)
		}

		if len(s.Success) > 0 {
			if ok := string(s.Success); ok != "1" && ok != `"1"` && ok != "true" {
				return exchange.NewAPIError(Venue, command, s.Message)
			}
		}
	}

	if v == nil {
		return nil
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s response: %w", command, err)
	}

	return nil
}

func translateError(command string, message string) error {
	switch message {
	case msgInvalidPair, msgInvalidPairParam:
		return fmt.Errorf("%w: %s", exchange.ErrUnknownPair, message)

	case msgOrderNotFound:
		return fmt.Errorf("%w: %s", exchange.ErrOrderNotFound, message)
	}

	return exchange.NewAPIError(Venue, command, message)
}
