package infra

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

// logInfo adds an info message to the construct metadata, printed by
// cdk synth.
func logInfo(scope constructs.Construct, format string, args ...any) {
	awscdk.Annotations_Of(scope).AddInfo(jsii.String(fmt.Sprintf(format, args...)))
}

// logWarning adds a warning to the construct metadata.
func logWarning(scope constructs.Construct, format string, args ...any) {
	awscdk.Annotations_Of(scope).AddWarning(jsii.String(fmt.Sprintf(format, args...)))
}
