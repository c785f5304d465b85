package fault

import (
	"errors"
	"fmt"
	"testing"
)

const accessDeniedDoc = `<?xml version="1.0" encoding="UTF-8"?>
<Error>
    <Code>AccessDenied</Code>
    <Message>Access Denied</Message>
    <RequestId>4442587FB7D0A2F9</RequestId>
</Error>`

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain message",
			raw:  "connection refused",
			want: "connection refused",
		},
		{
			name: "empty message",
			raw:  "",
			want: "",
		},
		{
			name: "fault document",
			raw:  accessDeniedDoc,
			want: "Access Denied",
		},
		{
			name: "minimal document",
			raw:  `<?xml version="1.0"?><Error><Message>My fake access key failed message</Message></Error>`,
			want: "My fake access key failed message",
		},
		{
			name: "escaped entities",
			raw:  `<?xml version="1.0"?><Error><Message>a &lt; b &amp; c</Message></Error>`,
			want: "a < b & c",
		},
		{
			name: "first message wins",
			raw:  `<?xml version="1.0"?><Errors><Message>one</Message><Message>two</Message></Errors>`,
			want: "one",
		},
		{
			name: "nested markup in message",
			raw:  `<?xml version="1.0"?><Error><Message>bucket <b>logs</b> missing</Message></Error>`,
			want: "bucket logs missing",
		},
		{
			name: "empty message element",
			raw:  `<?xml version="1.0"?><Error><Message></Message></Error>`,
			want: "",
		},
		{
			name: "no message element",
			raw:  `<?xml version="1.0"?><Error><Code>NoSuchBucket</Code></Error>`,
			want: `<?xml version="1.0"?><Error><Code>NoSuchBucket</Code></Error>`,
		},
		{
			name: "truncated inside message",
			raw:  `<?xml version="1.0"?><Error><Message>Access Den`,
			want: `<?xml version="1.0"?><Error><Message>Access Den`,
		},
		{
			name: "malformed before message",
			raw:  `<?xml version="1.0"?><Error><Code>X</Cod><Message>hidden</Message></Error>`,
			want: `<?xml version="1.0"?><Error><Code>X</Cod><Message>hidden</Message></Error>`,
		},
		{
			name: "unsupported charset",
			raw:  `<?xml version="1.0" encoding="ISO-8859-1"?><Error><Message>x</Message></Error>`,
			want: `<?xml version="1.0" encoding="ISO-8859-1"?><Error><Message>x</Message></Error>`,
		},
		{
			name: "leading whitespace is not a document",
			raw:  "  <?xml version=\"1.0\"?><Error><Message>x</Message></Error>",
			want: "  <?xml version=\"1.0\"?><Error><Message>x</Message></Error>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.raw); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	if got := Translate(nil); got != "" {
		t.Errorf("Translate(nil) = %q, want empty", got)
	}

	if got := Translate(errors.New(accessDeniedDoc)); got != "Access Denied" {
		t.Errorf("Translate(fault) = %q, want %q", got, "Access Denied")
	}

	plain := fmt.Errorf("list objects: %w", errors.New("timeout"))
	if got := Translate(plain); got != "list objects: timeout" {
		t.Errorf("Translate(plain) = %q, want %q", got, "list objects: timeout")
	}
}
