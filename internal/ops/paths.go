package ops

// Fixed paths relative to the data root.
const (
	DatesFile       = "dates.txt"
	ContactsFile    = "contacts.json"
	ContactsSorted  = "contacts-sorted.json"
	LogsDir         = "logs"
	LogsRecentFile  = "logs-recent.txt"
	DocsDir         = "docs"
	DocsIndexFile   = "docs/index.json"
	EmailFile       = "email.txt"
	EmailSenderFile = "email-sender.txt"
	TicketsDB       = "ticket-sales.db"
	TicketsTable    = "tickets"
	FormatFile      = "format.md"
)
