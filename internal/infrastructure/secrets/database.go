package secrets

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	crerr "github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

const versionStageCurrent = "AWSCURRENT"

// SecretGetter is the slice of the Secrets Manager API used here.
type SecretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// DatabaseCredentials is the JSON shape RDS writes into managed secrets.
type DatabaseCredentials struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	Engine   string    `json:"engine"`
	Host     string    `json:"host"`
	Port     portValue `json:"port"`
	DBName   string    `json:"dbname"`
}

// portValue accepts the port as a JSON number or string.
type portValue int

func (p *portValue) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid port %q", raw)
	}
	*p = portValue(n)
	return nil
}

type DatabaseURLResolver struct {
	client SecretGetter
}

func NewDatabaseURLResolver(client SecretGetter) *DatabaseURLResolver {
	return &DatabaseURLResolver{client: client}
}

// NewAWSDatabaseURLResolver builds a resolver on the default AWS credential
// chain for region.
func NewAWSDatabaseURLResolver(ctx context.Context, region string) (*DatabaseURLResolver, error) {
	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(strings.TrimSpace(region)))
	if err != nil {
		return nil, crerr.Wrap(err, "load aws config")
	}
	return NewDatabaseURLResolver(secretsmanager.NewFromConfig(sdkCfg)), nil
}

func (r *DatabaseURLResolver) Credentials(ctx context.Context, secretName string) (DatabaseCredentials, error) {
	secretName = strings.TrimSpace(secretName)
	if secretName == "" {
		return DatabaseCredentials{}, crerr.New("secret name is required")
	}

	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretName),
		VersionStage: aws.String(versionStageCurrent),
	})
	if err != nil {
		return DatabaseCredentials{}, crerr.Wrapf(err, "get secret %q", secretName)
	}
	if out == nil || out.SecretString == nil || strings.TrimSpace(*out.SecretString) == "" {
		return DatabaseCredentials{}, crerr.Newf("secret %q has no string value", secretName)
	}

	var creds DatabaseCredentials
	if err := jsoniter.UnmarshalFromString(*out.SecretString, &creds); err != nil {
		return DatabaseCredentials{}, crerr.Wrapf(err, "decode secret %q", secretName)
	}
	if creds.Username == "" || creds.Host == "" {
		return DatabaseCredentials{}, crerr.Newf("secret %q is missing username or host", secretName)
	}
	return creds, nil
}

func (r *DatabaseURLResolver) DatabaseURL(ctx context.Context, secretName, sslMode string) (string, error) {
	creds, err := r.Credentials(ctx, secretName)
	if err != nil {
		return "", err
	}
	return BuildDatabaseURL(creds, sslMode), nil
}

// BuildDatabaseURL renders creds as a postgres URL. The database path is
// omitted when the secret carries no dbname.
func BuildDatabaseURL(creds DatabaseCredentials, sslMode string) string {
	host := creds.Host
	if creds.Port > 0 {
		host = net.JoinHostPort(creds.Host, strconv.Itoa(int(creds.Port)))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(creds.Username, creds.Password),
		Host:   host,
	}
	if creds.DBName != "" {
		u.Path = "/" + creds.DBName
	}
	if sslMode = strings.TrimSpace(sslMode); sslMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{sslMode}}.Encode()
	}
	return u.String()
}

// ResolveDatabaseURL prefers the secret when secretName is set and falls
// back to fallbackURL otherwise.
func ResolveDatabaseURL(ctx context.Context, fallbackURL, secretName, region, sslMode string) (string, error) {
	if strings.TrimSpace(secretName) == "" {
		fallbackURL = strings.TrimSpace(fallbackURL)
		if fallbackURL == "" {
			return "", crerr.New("database url is not configured")
		}
		return fallbackURL, nil
	}

	resolver, err := NewAWSDatabaseURLResolver(ctx, region)
	if err != nil {
		return "", err
	}
	return resolver.DatabaseURL(ctx, secretName, sslMode)
}
