package types

// Config represents the application configuration that can be loaded from a file.
// TotalMonthlyBudget vale apenas quando uma única plataforma é selecionada;
// com mais de uma, cada plataforma usa o seu próprio total_monthly_budget.
type Config struct {
	Platforms          []string     `json:"platforms" yaml:"platforms" toml:"platforms"`
	Meta               MetaConfig   `json:"meta" yaml:"meta" toml:"meta"`
	Google             GoogleConfig `json:"google" yaml:"google" toml:"google"`
	TotalMonthlyBudget float64      `json:"total_monthly_budget" yaml:"total_monthly_budget" toml:"total_monthly_budget"`
	Padding            string       `json:"padding" yaml:"padding" toml:"padding"`
	DateRange          []string     `json:"date_range" yaml:"date_range" toml:"date_range"`
	ReportName         string       `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType         []string     `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir                string       `json:"dir" yaml:"dir" toml:"dir"`
	S3Bucket           string       `json:"s3_bucket" yaml:"s3_bucket" toml:"s3_bucket"`
	S3Prefix           string       `json:"s3_prefix" yaml:"s3_prefix" toml:"s3_prefix"`
	AWSProfile         string       `json:"aws_profile" yaml:"aws_profile" toml:"aws_profile"`
	ListenAddr         string       `json:"listen_addr" yaml:"listen_addr" toml:"listen_addr"`
}

// MetaConfig holds Meta Ads (Graph API) settings.
type MetaConfig struct {
	AccessToken        string  `json:"access_token" yaml:"access_token" toml:"access_token"`
	AdAccountID        string  `json:"ad_account_id" yaml:"ad_account_id" toml:"ad_account_id"`
	APIVersion         string  `json:"api_version" yaml:"api_version" toml:"api_version"`
	BaseURL            string  `json:"base_url" yaml:"base_url" toml:"base_url"`
	TotalMonthlyBudget float64 `json:"total_monthly_budget" yaml:"total_monthly_budget" toml:"total_monthly_budget"`
}

// GoogleConfig holds Google Ads settings.
type GoogleConfig struct {
	CustomerID         string  `json:"customer_id" yaml:"customer_id" toml:"customer_id"`
	CredentialsFile    string  `json:"credentials_file" yaml:"credentials_file" toml:"credentials_file"`
	LoginCustomerID    string  `json:"login_customer_id" yaml:"login_customer_id" toml:"login_customer_id"`
	APIVersion         string  `json:"api_version" yaml:"api_version" toml:"api_version"`
	BaseURL            string  `json:"base_url" yaml:"base_url" toml:"base_url"`
	TotalMonthlyBudget float64 `json:"total_monthly_budget" yaml:"total_monthly_budget" toml:"total_monthly_budget"`
}
