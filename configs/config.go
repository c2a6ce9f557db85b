package config

import "os"

type R2 struct {
	AccountID     string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicBaseURL string
}

// PostFields maps Post attributes to column names in the Posts table so the
// code keeps working when a base renames its columns.
type PostFields struct {
	Prompt        string
	Caption       string
	ImageURL      string
	Published     string
	MediaID       string
	PublishDate   string
	ScheduledTime string
	Status        string
}

type Airtable struct {
	APIKey               string
	BaseID               string
	PostsTable           string
	RetryTable           string
	AccountInsightsTable string
	MediaInsightsTable   string
	Fields               PostFields
}

type Config struct {
	OpenAIAPIKey         string
	CaptionModel         string
	ImageModel           string
	InstagramAccessToken string
	InstagramBusinessID  string
	InstagramAPIVersion  string
	RedisURI             string
	CompanyName          string
	Timezone             string
	OpsAPIKey            string
	ProcessSchedule      string
	RetrySchedule        string
	R2                   R2
	Airtable             Airtable
}

func LoadConfig() *Config {
	return &Config{
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		CaptionModel:         getEnv("OPENAI_CAPTION_MODEL", "gpt-4"),
		ImageModel:           getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		InstagramAccessToken: getEnv("ACCESS_TOKEN", ""),
		InstagramBusinessID:  getEnv("INSTAGRAM_BUSINESS_ID", ""),
		InstagramAPIVersion:  getEnv("INSTAGRAM_API_VERSION", "v22.0"),
		RedisURI:             getEnv("REDIS_URI", "localhost:6379"),
		CompanyName:          getEnv("COMPANY_NAME", "The Tech Boss"),
		Timezone:             getEnv("TIMEZONE", "Asia/Karachi"),
		OpsAPIKey:            getEnv("OPS_API_KEY", ""),
		ProcessSchedule:      getEnv("PROCESS_SCHEDULE", "@every 00h10m00s"),
		RetrySchedule:        getEnv("RETRY_SCHEDULE", "@every 00h15m00s"),
		R2: R2{
			AccountID:     getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:     getEnv("R2_ACCESS_KEY", ""),
			SecretKey:     getEnv("R2_SECRET_KEY", ""),
			BucketName:    getEnv("R2_BUCKET_NAME", ""),
			PublicBaseURL: getEnv("R2_PUBLIC_BASE_URL", ""),
		},
		Airtable: Airtable{
			APIKey:               getEnv("AIRTABLE_API_KEY", ""),
			BaseID:               getEnv("AIRTABLE_BASE_ID", ""),
			PostsTable:           getEnv("AIRTABLE_POSTS_TABLE", "Posts"),
			RetryTable:           getEnv("AIRTABLE_RETRY_TABLE", "Retry Queue"),
			AccountInsightsTable: getEnv("AIRTABLE_ACCOUNT_INSIGHTS_TABLE", "Account Insights"),
			MediaInsightsTable:   getEnv("AIRTABLE_MEDIA_INSIGHTS_TABLE", "Media Insights"),
			Fields: PostFields{
				Prompt:        getEnv("AIRTABLE_FIELD_PROMPT", "Prompt"),
				Caption:       getEnv("AIRTABLE_FIELD_CAPTION", "Generated Captions"),
				ImageURL:      getEnv("AIRTABLE_FIELD_IMAGE_URL", "Image URL"),
				Published:     getEnv("AIRTABLE_FIELD_PUBLISHED", "Published"),
				MediaID:       getEnv("AIRTABLE_FIELD_MEDIA_ID", "Media ID"),
				PublishDate:   getEnv("AIRTABLE_FIELD_PUBLISH_DATE", "Publish Date"),
				ScheduledTime: getEnv("AIRTABLE_FIELD_SCHEDULED_TIME", "Scheduled Time"),
				Status:        getEnv("AIRTABLE_FIELD_STATUS", "Status"),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
