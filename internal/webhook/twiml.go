package webhook

import (
	"encoding/xml"
	"fmt"
)

// twimlResponse is the messaging TwiML document returned to the gateway.
// An empty response (no Message element) acknowledges receipt without
// replying inline, which is what async mode does.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// renderTwiML serializes a reply message as TwiML. encoding/xml escapes the
// message body, so model output can never break the document.
func renderTwiML(message string) (string, error) {
	body, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		return "", fmt.Errorf("render twiml: %w", err)
	}
	return xml.Header + string(body), nil
}
