package taskname

const (
	// Activity tasks
	ActivityAppend = "activity:append"
)
