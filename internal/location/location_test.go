package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryParams(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want map[string]string
	}{
		{"explicit", Explicit("New York"), map[string]string{"q": "New York"}},
		{"city with code", berlin, map[string]string{"q": "Berlin,DE"}},
		{"city only", Resolved(1, 2, "Lagos", "Nigeria", ""), map[string]string{"q": "Lagos"}},
		{"coordinates", Resolved(-33.86791, 151.20732, "", "", ""), map[string]string{"lat": "-33.8679", "lon": "151.2073"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.loc.QueryParams()
			assert.Len(t, q, len(tt.want))
			for k, v := range tt.want {
				assert.Equal(t, v, q.Get(k))
			}
		})
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "Paris", Explicit("Paris").Name())
	assert.Equal(t, "Berlin", berlin.Name())
	assert.Equal(t, "1.5000,2.2500", Resolved(1.5, 2.25, "", "", "").Name())
	assert.Equal(t, "Berlin,DE", berlin.Describe())
}
