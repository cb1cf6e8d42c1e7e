package safeweb

import (
	"strings"
	"testing"
)

func TestCheckURL(t *testing.T) {
	cases := []struct {
		url string
		ok  bool
	}{
		{"https://translate.example.com/api", true},
		{"http://translate.example.com", true},
		{"ftp://example.com", false},
		{"https://127.0.0.1/api", false},
		{"https://10.1.2.3", false},
		{"https://192.168.1.5:8080", false},
		{"https://169.254.0.8", false},
		{"https://[::1]/x", false},
		{"https://", false},
	}
	for _, c := range cases {
		err := CheckURL(c.url)
		if c.ok && err != nil {
			t.Errorf("CheckURL(%q): unexpected error %v", c.url, err)
		}
		if !c.ok && err == nil {
			t.Errorf("CheckURL(%q): want error", c.url)
		}
	}
}

func TestCheckID(t *testing.T) {
	for _, good := range []string{"hero", "product_card_2", "page-1", "v1.2"} {
		if err := CheckID(good); err != nil {
			t.Errorf("CheckID(%q): unexpected error %v", good, err)
		}
	}
	for _, bad := range []string{"", "a b", "x/../y", "id;drop", strings.Repeat("a", 257)} {
		if err := CheckID(bad); err == nil {
			t.Errorf("CheckID(%q): want error", bad)
		}
	}
}

func TestReadAll_Bounded(t *testing.T) {
	data, err := ReadAll(strings.NewReader("hello"), 10)
	if err != nil || string(data) != "hello" {
		t.Errorf("ReadAll small: got %q, %v", data, err)
	}
	if _, err := ReadAll(strings.NewReader("0123456789abc"), 10); err == nil {
		t.Error("ReadAll: want error when the limit is exceeded")
	}
}
