package entity

import "testing"

func TestCanonicalProductValidate(t *testing.T) {
	cases := []struct {
		name    string
		p       CanonicalProduct
		wantErr bool
	}{
		{"valid", CanonicalProduct{ManageNumber: "mn-1", OriginProductIDs: JSONStringArray{"p1"}}, false},
		{"missing manage number", CanonicalProduct{OriginProductIDs: JSONStringArray{"p1"}}, true},
		{"missing origin ids", CanonicalProduct{ManageNumber: "mn-1"}, true},
	}
	for _, tc := range cases {
		err := tc.p.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: expected no error, got %v", tc.name, err)
		}
	}
}

func TestCanonicalProductIsRegistered(t *testing.T) {
	cases := []struct {
		state RegistrationState
		want  bool
	}{
		{RegistrationStateUnset, false},
		{RegistrationStateTrue, true},
		{RegistrationStateFalse, false},
		{RegistrationStateOnSale, true},
		{RegistrationStateStop, false},
		{RegistrationStateDeleted, false},
	}
	for _, tc := range cases {
		p := CanonicalProduct{RegistrationState: tc.state}
		if got := p.IsRegistered(); got != tc.want {
			t.Errorf("state %q: IsRegistered() = %v, want %v", tc.state, got, tc.want)
		}
	}
}
