package constant

// ReportTokenValueLength is the length of a generated token value. Over an
// alphanumeric alphabet this carries roughly 131 bits of entropy.
const ReportTokenValueLength = 22
