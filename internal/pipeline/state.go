package pipeline

// State is a step of the asset-synchronized write.
type State int

const (
	Validating State = iota
	CheckingDuplicate
	UploadingAssets
	Writing
	WritingDependents
	CleaningUpOldAssets
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Validating:
		return "Validating"
	case CheckingDuplicate:
		return "CheckingDuplicate"
	case UploadingAssets:
		return "UploadingAssets"
	case Writing:
		return "Writing"
	case WritingDependents:
		return "WritingDependents"
	case CleaningUpOldAssets:
		return "CleaningUpOldAssets"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

type Op string

const (
	OpCreate Op = "create"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
)
