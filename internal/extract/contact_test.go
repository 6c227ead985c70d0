package extract

import "testing"

func TestContact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		who   string
		email string
		phone string
	}{
		{
			name:  "explicit name line",
			text:  "Curriculum Vitae\nName: Jane Doe\nEmail: jane.doe@example.com\nPhone: +1 555-123-4567",
			who:   "Jane Doe",
			email: "jane.doe@example.com",
			phone: "+1 555-123-4567",
		},
		{
			name: "first line fallback",
			text: "\n\n  John Smith  \nPython developer",
			who:  "John Smith",
		},
		{
			name: "empty text",
			text: "",
			who:  "Unknown",
		},
		{
			name: "name line beyond scan window is ignored",
			text: "Top\n2\n3\n4\n5\n6\n7\n8\n9\n10\nName: Too Late",
			who:  "Top",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Contact(tt.text)
			if got.Name != tt.who {
				t.Fatalf("expected name %q, got %q", tt.who, got.Name)
			}
			checkOptional(t, "email", got.Email, tt.email)
			checkOptional(t, "phone", got.Phone, tt.phone)
		})
	}
}

func checkOptional(t *testing.T, field string, got *string, want string) {
	t.Helper()
	if want == "" {
		if got != nil {
			t.Fatalf("expected no %s, got %q", field, *got)
		}
		return
	}
	if got == nil || *got != want {
		t.Fatalf("expected %s %q, got %v", field, want, got)
	}
}
