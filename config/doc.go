// Package config loads YAML client profiles and builds dispatchers from them.
//
// A profile names the provider and service, the endpoint, the signer and its
// options, credential references, and the retry, throttle, error-table and
// logging settings:
//
//	provider: aws
//	service: ec2
//	endpoint: https://ec2.us-east-1.amazonaws.com/
//	region: us-east-1
//	signer:
//	  kind: v4
//	credentials:
//	  identity: ${AWS_ACCESS_KEY_ID}
//	  secret: secretref:env:AWS_SECRET_ACCESS_KEY
//	retry:
//	  max_attempts: 4
//	  max_rate_limit_wait: 2m
//	error_table: aws
//
// Credential values are resolved through a secret.Resolver when the
// dispatcher is built and again after the server rejects them.
package config
