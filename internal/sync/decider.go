package sync

import "github.com/8emezzo/iphone-photo-copier/internal/device"

// Action is the per-file copy decision.
type Action string

const (
	ActionCopy Action = "copy"
	ActionSkip Action = "skip"
)

// Decision reasons, carried into the session log so an overwrite after a
// partial prior copy is distinguishable from a fresh copy.
const (
	ReasonNewFile     = "new file"
	ReasonSizeDiffers = "size differs"
	ReasonUpToDate    = "already present"
)

// Decide returns SKIP iff the destination index holds a file with the
// same name and the same size. A size mismatch signals a partial prior
// copy or a naming collision and forces a COPY that overwrites the
// existing file. No content hashing: reading full content back over the
// device protocol would defeat the point of skipping.
func Decide(entry device.FileEntry, idx *RollIndex) (Action, string) {
	size, ok := idx.Lookup(entry.Name)
	if !ok {
		return ActionCopy, ReasonNewFile
	}
	if size != entry.Size {
		return ActionCopy, ReasonSizeDiffers
	}
	return ActionSkip, ReasonUpToDate
}
