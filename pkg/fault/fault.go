// Package fault reduces storage provider errors to a single readable message.
//
// Providers sometimes return a serialized XML fault document in place of a
// plain error message:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<Error>
//	    <Code>InvalidAccessKeyId</Code>
//	    <Message>The AWS Access Key Id you provided does not exist.</Message>
//	</Error>
//
// Translate extracts the text of the first Message element from such a
// document and returns every other message untouched.
package fault

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// xmlDeclaration marks a message that is a serialized fault document.
const xmlDeclaration = "<?xml"

// Translate returns the readable message for err. It never fails: a message
// that is not a fault document, or one that cannot be parsed, is returned
// as is. A nil error yields an empty string.
func Translate(err error) string {
	if err == nil {
		return ""
	}
	return Message(err.Error())
}

// Message is Translate for a raw message string.
func Message(raw string) string {
	if !strings.HasPrefix(raw, xmlDeclaration) {
		return raw
	}
	if msg, ok := scanMessage(raw); ok {
		return msg
	}
	return raw
}

// scanMessage streams the document's tokens looking for the first Message
// element and returns its text content.
func scanMessage(doc string) (string, bool) {
	dec := xml.NewDecoder(strings.NewReader(doc))

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Message" {
			continue
		}

		text, err := readText(dec)
		if err != nil {
			return "", false
		}
		return text, true
	}
}

// readText collects character data up to the end tag closing the current
// element, including text inside nested elements.
func readText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return sb.String(), nil
			}
			depth--
		}
	}
}
