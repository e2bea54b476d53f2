package configfetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	serverURLRequiredMessageConstant   = "configuration server URL must be provided"
	applicationRequiredMessageConstant = "application identifier must be provided"
	namespaceNotFoundMessageConstant   = "namespace does not exist or has not been published"
	namespaceEndpointTemplateConstant  = "%s/configfiles/json/%s/%s/%s"
	requestFailureTemplateConstant     = "configuration request failed: %w"
	unexpectedStatusTemplateConstant   = "configuration server returned status %d"
	decodeFailureTemplateConstant      = "failed to decode configuration payload: %w"
	defaultRequestTimeoutConstant      = 10 * time.Second
	logMessageNamespaceFetchedConstant = "configuration namespace fetched"
	logFieldNamespaceConstant          = "namespace"
	logFieldEntryCountConstant         = "entries"
)

// ErrServerURLRequired indicates the client was built without a server URL.
var ErrServerURLRequired = errors.New(serverURLRequiredMessageConstant)

// ErrApplicationRequired indicates the application identifier option was empty.
var ErrApplicationRequired = errors.New(applicationRequiredMessageConstant)

// ErrNamespaceNotFound indicates the requested namespace is absent or unpublished.
var ErrNamespaceNotFound = errors.New(namespaceNotFoundMessageConstant)

// Client fetches published configuration namespaces from a central configuration server.
type Client struct {
	serverURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs a Client for the configuration server at serverURL.
func NewClient(serverURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	trimmedServerURL := strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if len(trimmedServerURL) == 0 {
		return nil, ErrServerURLRequired
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeoutConstant}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{serverURL: trimmedServerURL, httpClient: httpClient, logger: logger}, nil
}

// FetchNamespace retrieves the published entries of one configuration namespace.
func (client *Client) FetchNamespace(executionContext context.Context, applicationID string, clusterName string, namespaceName string) (map[string]string, error) {
	trimmedApplicationID := strings.TrimSpace(applicationID)
	if len(trimmedApplicationID) == 0 {
		return nil, ErrApplicationRequired
	}

	endpointURL := fmt.Sprintf(namespaceEndpointTemplateConstant, client.serverURL, trimmedApplicationID, clusterName, namespaceName)
	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, endpointURL, nil)
	if requestError != nil {
		return nil, fmt.Errorf(requestFailureTemplateConstant, requestError)
	}

	response, responseError := client.httpClient.Do(request)
	if responseError != nil {
		return nil, fmt.Errorf(requestFailureTemplateConstant, responseError)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, ErrNamespaceNotFound
	}
	if response.StatusCode != http.StatusOK {
		io.Copy(io.Discard, response.Body)
		return nil, fmt.Errorf(unexpectedStatusTemplateConstant, response.StatusCode)
	}

	configurationEntries := map[string]string{}
	if decodeError := json.NewDecoder(response.Body).Decode(&configurationEntries); decodeError != nil {
		return nil, fmt.Errorf(decodeFailureTemplateConstant, decodeError)
	}

	client.logger.Debug(
		logMessageNamespaceFetchedConstant,
		zap.String(logFieldNamespaceConstant, namespaceName),
		zap.Int(logFieldEntryCountConstant, len(configurationEntries)),
	)
	return configurationEntries, nil
}
