package main

import (
	"fmt"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/garyjia/claims-portal/internal/interfaces/lambda"
)

func main() {
	client, logger, err := lambda.Bootstrap()
	if err != nil {
		fmt.Fprintf(os.Stderr, "crm-contact: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	awslambda.Start(lambda.ContactHandler(client, client, logger))
}
