package handle

type Config struct {
	// Functions are run by the Lambda runtime, in order. Either edge
	// functions or the content generator alone.
	Functions []string `conf:"functions"`
}
