package prompt

// Convenience accessors for the fixed prompt-template inventory the
// analysis and report-generation nodes draw from: one industry-aware
// system prompt plus one user-prompt template per bucket.

// Bucket names double as prompt IDs and as the analysis bucket names the
// report nodes key state fields by.
const (
	BucketCore      = "core"
	BucketAuxiliary = "auxiliary"
	BucketSpecific  = "specific"
	BucketFinal     = "final"
)

// SystemPromptID is the single industry-parameterized system prompt
// shared by every analysis node.
const SystemPromptID = "system"

// GetSystemTemplate returns the industry-aware system prompt template.
func GetSystemTemplate() (*PromptTemplate, error) {
	return Get().GetPrompt(SystemPromptID)
}

// GetBucketTemplate returns the user-prompt template for an analysis
// bucket ("core", "auxiliary", "specific") or the final report composer.
func GetBucketTemplate(bucket string) (*PromptTemplate, error) {
	return Get().GetPrompt(bucket)
}
