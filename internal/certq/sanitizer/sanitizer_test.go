package sanitizer

import (
	"strings"
	"testing"
)

const testSalt = "certq-test-salt-2026-02"

func TestRedact(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		secrets []any
		want    string
	}{
		{
			name:    "no_secrets",
			data:    "GET /health HTTP/1.1",
			secrets: []any{},
			want:    "GET /health HTTP/1.1",
		},
		{
			name:    "nil_secrets",
			data:    "GET /health HTTP/1.1",
			secrets: nil,
			want:    "GET /health HTTP/1.1",
		},
		{
			name:    "bearer_token",
			data:    "Authorization: Bearer tok_9f3b",
			secrets: []any{"tok_9f3b"},
			want:    "Authorization: Bearer [S256:90da9af65dc48853]",
		},
		{
			name:    "multiple_secrets",
			data:    "user=admin pass=hunter2 key=sk_live_4242",
			secrets: []any{"hunter2", "sk_live_4242"},
			want:    "user=admin pass=[S256:5c6e51ba5b82e680] key=[S256:725d6eaf5fbeba66]",
		},
		{
			name:    "empty_secret_ignored",
			data:    "hello world",
			secrets: []any{""},
			want:    "hello world",
		},
		{
			name:    "non_string_secret_ignored",
			data:    "hello 123 world",
			secrets: []any{123, 3.14},
			want:    "hello 123 world",
		},
		{
			name:    "repeated_occurrences",
			data:    "hunter2 then hunter2 again",
			secrets: []any{"hunter2"},
			want:    "[S256:5c6e51ba5b82e680] then [S256:5c6e51ba5b82e680] again",
		},
		{
			name:    "special_characters",
			data:    "password: pa$$w0rd!",
			secrets: []any{"pa$$w0rd!"},
			want:    "password: [S256:d44976b7e6918cb5]",
		},
		{
			name:    "unicode_secret",
			data:    "token: секрет",
			secrets: []any{"секрет"},
			want:    "token: [S256:567916b1bf2db933]",
		},
		{
			name:    "multiline_secret",
			data:    "key:\nmulti\nline\nkey",
			secrets: []any{"multi\nline\nkey"},
			want:    "key:\n[S256:90e8452263c4f5fe]",
		},
		{
			name:    "partial_match_redacted",
			data:    "hunter2extra",
			secrets: []any{"hunter2"},
			want:    "[S256:5c6e51ba5b82e680]extra",
		},
		{
			name:    "case_sensitive",
			data:    "Hunter2 and hunter2",
			secrets: []any{"hunter2"},
			want:    "Hunter2 and [S256:5c6e51ba5b82e680]",
		},
		{
			name:    "empty_data",
			data:    "",
			secrets: []any{"hunter2"},
			want:    "",
		},
		{
			name:    "secret_at_start",
			data:    "hunter2 leads",
			secrets: []any{"hunter2"},
			want:    "[S256:5c6e51ba5b82e680] leads",
		},
		{
			name:    "secret_at_end",
			data:    "trailing hunter2",
			secrets: []any{"hunter2"},
			want:    "trailing [S256:5c6e51ba5b82e680]",
		},
		{
			name:    "secret_is_entire_data",
			data:    "hunter2",
			secrets: []any{"hunter2"},
			want:    "[S256:5c6e51ba5b82e680]",
		},
		{
			name:    "certificate_serial_secret",
			data:    "pinned serial serial-1ee8b17f observed",
			secrets: []any{"serial-1ee8b17f"},
			want:    "pinned serial [S256:37f4482055506667] observed",
		},
		{
			name:    "overlapping_longest_wins",
			data:    "Bearer abcd",
			secrets: []any{"abc", "abcd"},
			want:    "Bearer [S256:dcf453c11e078a86]",
		},
		{
			name:    "overlapping_deterministic_regardless_of_order",
			data:    "Bearer abcd",
			secrets: []any{"abcd", "abc"},
			want:    "Bearer [S256:dcf453c11e078a86]",
		},
		{
			name:    "short_secret_does_not_corrupt_marker",
			data:    "Bearer abcd",
			secrets: []any{"S", "abcd"},
			want:    "Bearer [S256:dcf453c11e078a86]",
		},
		{
			name:    "large_dump",
			data:    strings.Repeat("data ", 1000) + "hunter2 " + strings.Repeat("more ", 1000) + "tok_9f3b",
			secrets: []any{"hunter2", "tok_9f3b"},
			want:    strings.Repeat("data ", 1000) + "[S256:5c6e51ba5b82e680] " + strings.Repeat("more ", 1000) + "[S256:90da9af65dc48853]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.secrets, testSalt)
			got := r.Redact([]byte(tt.data))
			if string(got) != tt.want {
				t.Errorf("Redact() = %s, want %s", string(got), tt.want)
			}
		})
	}
}

func TestRedactReturnsInputWhenNoMatch(t *testing.T) {
	r := New([]any{"absent"}, testSalt)
	data := []byte("nothing to see")
	got := r.Redact(data)
	if &got[0] != &data[0] {
		t.Errorf("Redact() copied data with no matches")
	}
}
