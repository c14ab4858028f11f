package filter

import (
	"testing"

	"github.com/gaspardpetit/mcptap/internal/platform"
)

func TestComposeByTier(t *testing.T) {
	client := platform.New("https://api.example.com", "jwt")
	cases := []struct {
		name   string
		client *platform.Client
		tier   string
		want   int
	}{
		{"unauthenticated", nil, "free", 1},
		{"authenticated free", client, "free", 1},
		{"pro", client, "pro", 3},
		{"enterprise", client, "enterprise", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Compose(Deps{
				CommandLog:    "commands.log",
				Client:        tc.client,
				Tier:          tc.tier,
				RiskThreshold: 0.8,
			})
			if p.Len() != tc.want {
				t.Fatalf("filters = %d, want %d", p.Len(), tc.want)
			}
		})
	}
}
