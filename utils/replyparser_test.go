package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractReply(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "gmail quote header",
			body: "Sure, sounds good!\n\nOn Mon, Jan 5, 2026 at 3:00 PM Jane wrote:\n> original message",
			want: "Sure, sounds good!",
		},
		{
			name: "signature sign-off",
			body: "Yes please.\n\nBest,\nJane",
			want: "Yes please.",
		},
		{
			name: "no markers returns trimmed body",
			body: "  Just checking in on my order.  \n",
			want: "Just checking in on my order.",
		},
		{
			name: "outlook original message divider",
			body: "Works for me.\n-----Original Message-----\nFrom: orders@printcraft.studio",
			want: "Works for me.",
		},
		{
			name: "underscore divider",
			body: "Approved!\n________________\nFrom: orders@printcraft.studio",
			want: "Approved!",
		},
		{
			name: "quoted lines without header",
			body: "I'd prefer matte black.\n\n> Which finish would you like?\n> We offer matte and gloss.",
			want: "I'd prefer matte black.",
		},
		{
			name: "earliest quote marker wins",
			body: "Top reply.\n> quoted\nOn Mon Jane wrote:\nmore",
			want: "Top reply.",
		},
		{
			name: "signature inside quoted history is unreachable",
			body: "Sounds great.\nOn Tue, Feb 3, 2026 Jane wrote:\n> Thanks,\n> Jane",
			want: "Sounds great.",
		},
		{
			name: "sent from my signature",
			body: "Can you make it 20cm tall?\n\nSent from my iPhone",
			want: "Can you make it 20cm tall?",
		},
		{
			name: "case-insensitive sign-off with no comma",
			body: "That price works.\n\nTHANKS\nJane Doe",
			want: "That price works.",
		},
		{
			name: "thanks mid-sentence is not a sign-off",
			body: "Thanks for the update, looks perfect.",
			want: "Thanks for the update, looks perfect.",
		},
		{
			name: "quote header before signature",
			body: "Confirmed.\n\nOn Jan 2, 2026 Printcraft wrote:\n> hello\n\nRegards,\nJane",
			want: "Confirmed.",
		},
		{
			name: "empty body",
			body: "",
			want: "",
		},
		{
			name: "body that is only quoted history",
			body: "> previous message\n> more previous",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractReply(tt.body))
		})
	}
}

func TestExtractReplyIsIdempotent(t *testing.T) {
	// For marker-free inputs, extracting twice must equal extracting once
	bodies := []string{
		"Looks good, go ahead with the print.",
		"  whitespace padded  ",
		"multi\nline\nreply",
	}

	for _, body := range bodies {
		once := ExtractReply(body)
		assert.Equal(t, once, ExtractReply(once))
	}
}

func TestExtractReplyOrFallback(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		subject string
		want    string
	}{
		{
			name:    "extracted text wins",
			body:    "All good here.\n\nBest,\nJane",
			subject: "Re: Your order",
			want:    "All good here.",
		},
		{
			name:    "empty extraction falls back to subject",
			body:    "> fully quoted\n> nothing new",
			subject: "Re: Your order",
			want:    "Re: Your order",
		},
		{
			name:    "empty extraction and subject fall back to placeholder",
			body:    "",
			subject: "   ",
			want:    UnparseableReplyPlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractReplyOrFallback(tt.body, tt.subject))
		})
	}
}

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "tags removed and entities unescaped",
			html: "<p>Great, thank you!</p>",
			want: "Great, thank you!",
		},
		{
			name: "line breaks preserved for boundary detection",
			html: "<div>Sure thing.</div><div>On Mon, Jane wrote:</div>",
			want: "Sure thing.\nOn Mon, Jane wrote:",
		},
		{
			name: "basic entities",
			html: "5 &lt; 10 &amp; 10 &gt; 5&nbsp;&quot;ok&quot;",
			want: "5 < 10 & 10 > 5 \"ok\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTMLTags(tt.html))
		})
	}
}

func TestStripThenExtract(t *testing.T) {
	html := "<p>Great, thank you! See you then.</p><br><p>On Mon, Jan 5, 2026 Jane wrote:</p><p>&gt; original</p>"
	assert.Equal(t, "Great, thank you! See you then.", ExtractReply(StripHTMLTags(html)))
}
