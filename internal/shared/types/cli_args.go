package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile         string
	Platforms          []string
	MetaToken          string
	MetaAccount        string
	GoogleCustomer     string
	GoogleCredentials  string
	TotalMonthlyBudget *float64
	MetaBudget         *float64
	GoogleBudget       *float64
	Padding            string
	DateRange          []string
	ReportName         string
	ReportType         []string
	Dir                string
	S3Bucket           string
	S3Prefix           string
	AWSProfile         string
	ListenAddr         string
}
