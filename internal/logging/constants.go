package logging

// Standardized field names for structured logging.
const (
	FieldFile          = "file_path"
	FieldSource        = "source"
	FieldStage         = "stage"
	FieldTransactionID = "transaction_id"
	FieldPartition     = "partition"
	FieldProcess       = "process"
	FieldPeriod        = "period"
	FieldYear          = "year"
	FieldReason        = "reason"
	FieldStatus        = "status"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldCount         = "count"
	FieldWorkers       = "workers"
	FieldDelimiter     = "delimiter"
	FieldInputFile     = "input_file"
	FieldOutputFile    = "output_file"
)
