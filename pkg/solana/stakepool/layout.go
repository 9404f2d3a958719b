package stakepool

// LayoutVersion identifies which user account layout an account was created
// with. The layout of an account never changes after creation.
type LayoutVersion uint8

const (
	LayoutVersionUnknown LayoutVersion = iota
	LayoutVersionLegacy
	LayoutVersionCurrent
)

// LatestLayoutVersion is what the program writes for new accounts.
const LatestLayoutVersion = LayoutVersionCurrent

// Account sizes that identify an older layout. Anything not listed here,
// including sizes we have never seen, is treated as the latest layout since
// layouts only ever grow.
var layoutVersionBySize = map[int]LayoutVersion{
	LegacyUserInfoAccountSize: LayoutVersionLegacy,
}

// DetectLayoutVersion classifies a user account by its data length. A missing
// account is one the program has yet to create, so it gets the latest layout.
func DetectLayoutVersion(data []byte, found bool) LayoutVersion {
	if !found {
		return LatestLayoutVersion
	}

	if version, ok := layoutVersionBySize[len(data)]; ok {
		return version
	}
	return LatestLayoutVersion
}

func (v LayoutVersion) String() string {
	switch v {
	case LayoutVersionLegacy:
		return "legacy"
	case LayoutVersionCurrent:
		return "current"
	}
	return "unknown"
}
