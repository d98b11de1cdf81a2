package common

import (
	"strings"

	"github.com/aws/aws-sdk-go/service/iam"
)

// GetTagValue returns the value of the first tag named key, or "" when absent.
func GetTagValue(tags []*iam.Tag, key string) string {
	for _, tag := range tags {
		if tag == nil || tag.Key == nil || tag.Value == nil {
			continue
		}
		if *tag.Key == key {
			return strings.TrimSpace(*tag.Value)
		}
	}

	return ""
}
