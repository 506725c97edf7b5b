package decision

// Verbs arrive with the s3: prefix as written by the upstream; the mapper
// matches the full token against these tables rather than stripping it.

// s3ReadActions are S3 verbs that only read object/bucket data or metadata.
var s3ReadActions = map[string]bool{
	"s3:GetObject":                   true,
	"s3:GetObjectAcl":                true,
	"s3:GetObjectTagging":            true,
	"s3:GetObjectVersion":            true,
	"s3:GetObjectVersionAcl":         true,
	"s3:GetObjectVersionTagging":     true,
	"s3:GetBucketAcl":                true,
	"s3:GetBucketCORS":               true,
	"s3:GetBucketLocation":           true,
	"s3:GetBucketLogging":            true,
	"s3:GetBucketNotification":       true,
	"s3:GetBucketPolicy":             true,
	"s3:GetBucketRequestPayment":     true,
	"s3:GetBucketTagging":            true,
	"s3:GetBucketVersioning":         true,
	"s3:GetBucketWebsite":            true,
	"s3:GetLifecycleConfiguration":   true,
	"s3:GetReplicationConfiguration": true,
}

// s3ListActions enumerate bucket/object collections without exposing content.
var s3ListActions = map[string]bool{
	"s3:ListBucket":              true,
	"s3:ListBucketVersions":      true,
	"s3:ListAllMyBuckets":        true,
	"s3:ListMultipartUploadParts": true,
	"s3:ListBucketMultipartUploads": true,
	"s3:ListObjectsV2":           true,
}

// s3WriteActions create or overwrite data.
var s3WriteActions = map[string]bool{
	"s3:PutObject":                   true,
	"s3:PutObjectAcl":                true,
	"s3:PutObjectTagging":            true,
	"s3:PutObjectVersionAcl":         true,
	"s3:PutObjectVersionTagging":     true,
	"s3:PutBucketAcl":                true,
	"s3:PutBucketCORS":               true,
	"s3:PutBucketLogging":            true,
	"s3:PutBucketNotification":       true,
	"s3:PutBucketPolicy":             true,
	"s3:PutBucketRequestPayment":     true,
	"s3:PutBucketTagging":            true,
	"s3:PutBucketVersioning":         true,
	"s3:PutBucketWebsite":            true,
	"s3:PutLifecycleConfiguration":   true,
	"s3:PutReplicationConfiguration": true,
	"s3:RestoreObject":               true,
	"s3:CreateBucket":                true,
}

// s3DeleteActions remove data.
var s3DeleteActions = map[string]bool{
	"s3:DeleteObject":               true,
	"s3:DeleteObjectVersion":        true,
	"s3:DeleteBucket":               true,
	"s3:DeleteObjectTagging":        true,
	"s3:DeleteObjectVersionTagging": true,
	"s3:AbortMultipartUpload":       true,
}

// MapAction resolves an S3 API verb to the coarse AccessType a policy is
// written against. Unknown verbs map to AccessAdmin: a verb this mapper
// doesn't recognize is treated as the most sensitive access rather than
// silently permitted, keeping the overall system closed-by-default.
func MapAction(verb string) AccessType {
	switch {
	case s3ReadActions[verb]:
		return AccessRead
	case s3ListActions[verb]:
		return AccessList
	case s3WriteActions[verb]:
		return AccessWrite
	case s3DeleteActions[verb]:
		return AccessDelete
	default:
		return AccessAdmin
	}
}
