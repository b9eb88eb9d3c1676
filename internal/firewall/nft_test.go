package firewall

import (
	"reflect"
	"testing"
)

func TestParseSetElements(t *testing.T) {
	listing := `table inet nftblock {
	set blacklist_v4 {
		type ipv4_addr
		flags interval
		elements = { 10.0.0.0/8, 192.0.2.1,
			     203.0.113.0/24 }
	}
}`

	elements := parseSetElements(listing)
	expected := []string{"10.0.0.0/8", "192.0.2.1", "203.0.113.0/24"}
	if !reflect.DeepEqual(elements, expected) {
		t.Errorf("Expected %v, got %v", expected, elements)
	}
}

func TestParseSetElements_EmptySet(t *testing.T) {
	listing := `table inet nftblock {
	set blacklist_v6 {
		type ipv6_addr
		flags interval
	}
}`

	if elements := parseSetElements(listing); elements != nil {
		t.Errorf("Expected nil for set without elements, got %v", elements)
	}
}
