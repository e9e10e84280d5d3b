// Package region selects the datacenter region for a remote browser session
// from the client's timezone identifier.
//
// Resolution is total: every input, including the empty string and garbage,
// resolves to a region. Three strategies run in strict precedence order:
// an exact-identifier table for latency-sensitive east-coast clusters, a
// continent/country prefix table for the common case, and a UTC-offset
// fallback that covers identifiers absent from both tables.
package region

// Region identifies a deployment zone of the remote browser backend.
type Region string

const (
	USWest2      Region = "us-west-2"
	USEast1      Region = "us-east-1"
	EUCentral1   Region = "eu-central-1"
	APSoutheast1 Region = "ap-southeast-1"
)

// DefaultRegion is used when the timezone is absent or cannot be resolved.
const DefaultRegion = USWest2

// String returns the region identifier as sent to the provisioning API.
func (r Region) String() string { return string(r) }

// Valid reports whether r is one of the known deployment zones.
func (r Region) Valid() bool {
	switch r {
	case USWest2, USEast1, EUCentral1, APSoutheast1:
		return true
	}
	return false
}
