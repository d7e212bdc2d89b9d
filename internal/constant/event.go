package constant

const (
	EventStreamName = "barricade-events"

	EventSubjectPrefix = "BARRICADE."

	EventReportCreated     = EventSubjectPrefix + "report.created"
	EventReportEdited      = EventSubjectPrefix + "report.edited"
	EventReportDeleted     = EventSubjectPrefix + "report.deleted"
	EventResponseSet       = EventSubjectPrefix + "response.set"
	EventReportEscalated   = EventSubjectPrefix + "report.escalated"
	EventIntegrationUpdate = EventSubjectPrefix + "integration.updated"
)
