package config

import (
	"os"
	"strings"
)

// localMediaConfig targets the docker-compose minio only when its endpoint is
// set; otherwise uploads stay in memory.
func localMediaConfig() MediaConfig {
	endpoint := strings.TrimSpace(os.Getenv("MEDIA_MINIO_ENDPOINT"))
	if endpoint == "" {
		return MediaConfig{}
	}
	return MediaConfig{
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")), "workshophub"),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")), "workshophub123"),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("MEDIA_S3_BUCKET")), "workshophub-media"),
		UseSSL:    false,
	}
}
