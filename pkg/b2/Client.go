package b2

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultAuthorizeURL = "https://api.backblazeb2.com/b2api/v2/b2_authorize_account"
	defaultDownloadHost = "f003.backblazeb2.com"

	/*
	 * B2 authorization tokens are valid for 24 hours. Refresh an hour
	 * early so a token never expires mid-request.
	 */
	sessionTTL = 23 * time.Hour
)

var (
	ErrNotConfigured    = fmt.Errorf("storage is not configured. Please go to Settings and provide your credentials")
	ErrBucketIDRequired = fmt.Errorf("bucket_id required in config when using a restricted application key")
)

/*
Credentials mirror the on-disk storage settings file.
*/
type Credentials struct {
	ApplicationKeyID string `json:"application_key_id"`
	ApplicationKey   string `json:"application_key"`
	BucketName       string `json:"bucket_name"`
	BucketID         string `json:"bucket_id"`
	UseCDN           bool   `json:"use_cdn"`
	CDNDomain        string `json:"cdn_domain"`
}

func (c Credentials) HasKeys() bool {
	return c.ApplicationKeyID != "" && c.ApplicationKey != ""
}

func (c Credentials) IsConfigured() bool {
	return c.HasKeys() && c.BucketName != ""
}

type Storage interface {
	Authorize(ctx context.Context, forceRefresh bool) error
	Configured() bool
	Delete(ctx context.Context, key string) (bool, error)
	FileURL(key string) string
	SetCredentials(creds Credentials)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

/*
Session holds one authorized connection to the storage service. It is
owned by the client, guarded by the client mutex, and rebuilt whenever
it expires, a refresh is forced, or credentials change. It is not
persisted, so a restart always re-authorizes on first use.
*/
type Session struct {
	Token       string
	APIURL      string
	DownloadURL string
	BucketID    string
	Expiry      time.Time
}

type ClientConfig struct {
	AuthorizeURL string
	Credentials  Credentials
	HTTPClient   *http.Client
}

type Client struct {
	authorizeURL string
	httpClient   *http.Client

	mu      sync.Mutex
	creds   Credentials
	session *Session
}

func NewClient(config ClientConfig) *Client {
	result := &Client{
		authorizeURL: config.AuthorizeURL,
		httpClient:   config.HTTPClient,
		creds:        config.Credentials,
	}

	if result.authorizeURL == "" {
		result.authorizeURL = defaultAuthorizeURL
	}

	if result.httpClient == nil {
		result.httpClient = http.DefaultClient
	}

	return result
}

func (c *Client) Configured() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.creds.IsConfigured()
}

/*
SetCredentials swaps credentials and drops any active session, forcing
re-authorization on the next call.
*/
func (c *Client) SetCredentials(creds Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.creds = creds
	c.session = nil
}

func (c *Client) Authorize(ctx context.Context, forceRefresh bool) error {
	_, err := c.ensureSession(ctx, forceRefresh)
	return err
}

/*
FileURL derives the public URL for a key. This is a pure function of
configuration, no network call is involved.
*/
func (c *Client) FileURL(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.creds.UseCDN && c.creds.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.creds.CDNDomain, key)
	}

	return fmt.Sprintf("https://%s/file/%s/%s", defaultDownloadHost, c.creds.BucketName, key)
}

func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	var (
		err     error
		session Session
		target  uploadTarget
	)

	if session, err = c.ensureSession(ctx, false); err != nil {
		return err
	}

	if target, err = c.getUploadTarget(ctx, session); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.UploadURL, bytes.NewReader(data))

	if err != nil {
		return fmt.Errorf("error building upload request for '%s': %w", key, err)
	}

	checksum := sha1.Sum(data)

	req.Header.Set("Authorization", target.AuthorizationToken)
	req.Header.Set("X-Bz-File-Name", escapeKey(key))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Bz-Content-Sha1", hex.EncodeToString(checksum[:]))
	req.ContentLength = int64(len(data))

	response, err := c.httpClient.Do(req)

	if err != nil {
		return fmt.Errorf("error uploading '%s': %w", key, err)
	}

	defer response.Body.Close()

	if err = checkResponse(response); err != nil {
		return fmt.Errorf("error uploading '%s': %w", key, err)
	}

	return nil
}

/*
Delete removes the most recent version found under an exact-prefix
match for key. A miss is reported as (false, nil), not an error, so
delete flows stay idempotent.
*/
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	var (
		err     error
		session Session
	)

	if session, err = c.ensureSession(ctx, false); err != nil {
		return false, err
	}

	listRequest := map[string]any{
		"bucketId":     session.BucketID,
		"prefix":       key,
		"maxFileCount": 1,
	}

	listResponse := struct {
		Files []struct {
			FileID   string `json:"fileId"`
			FileName string `json:"fileName"`
		} `json:"files"`
	}{}

	if err = c.apiCall(ctx, session, "b2_list_file_versions", listRequest, &listResponse); err != nil {
		return false, fmt.Errorf("error listing file versions for '%s': %w", key, err)
	}

	if len(listResponse.Files) == 0 {
		return false, nil
	}

	deleteRequest := map[string]any{
		"fileId":   listResponse.Files[0].FileID,
		"fileName": listResponse.Files[0].FileName,
	}

	if err = c.apiCall(ctx, session, "b2_delete_file_version", deleteRequest, nil); err != nil {
		return false, fmt.Errorf("error deleting file version for '%s': %w", key, err)
	}

	return true, nil
}

/*
ensureSession returns a snapshot of a valid session, authorizing first
when there is none, the current one has expired, or a refresh is
forced. The snapshot is used outside the lock so uploads don't
serialize on each other.
*/
func (c *Client) ensureSession(ctx context.Context, forceRefresh bool) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.creds.HasKeys() {
		return Session{}, ErrNotConfigured
	}

	if c.session != nil && time.Now().Before(c.session.Expiry) && !forceRefresh {
		return *c.session, nil
	}

	slog.Debug("authorizing storage account", "keyID", c.creds.ApplicationKeyID)

	session, err := c.authorize(ctx)

	if err != nil {
		return Session{}, err
	}

	c.session = &session
	return session, nil
}

func (c *Client) authorize(ctx context.Context) (Session, error) {
	var (
		err      error
		response *http.Response
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.authorizeURL, nil)

	if err != nil {
		return Session{}, fmt.Errorf("error building authorize request: %w", err)
	}

	req.SetBasicAuth(c.creds.ApplicationKeyID, c.creds.ApplicationKey)

	if response, err = c.httpClient.Do(req); err != nil {
		return Session{}, fmt.Errorf("error authorizing storage account: %w", err)
	}

	defer response.Body.Close()

	if err = checkResponse(response); err != nil {
		return Session{}, fmt.Errorf("error authorizing storage account: %w", err)
	}

	authData := struct {
		AccountID          string `json:"accountId"`
		AuthorizationToken string `json:"authorizationToken"`
		APIURL             string `json:"apiUrl"`
		DownloadURL        string `json:"downloadUrl"`
	}{}

	if err = json.NewDecoder(response.Body).Decode(&authData); err != nil {
		return Session{}, fmt.Errorf("error decoding authorize response: %w", err)
	}

	session := Session{
		Token:       authData.AuthorizationToken,
		APIURL:      authData.APIURL,
		DownloadURL: authData.DownloadURL,
		Expiry:      time.Now().Add(sessionTTL),
	}

	if session.BucketID, err = c.resolveBucketID(ctx, session, authData.AccountID); err != nil {
		return Session{}, err
	}

	return session, nil
}

/*
resolveBucketID prefers an explicit bucket id from config. Without one
it falls back to listing buckets by name, which restricted application
keys are not allowed to do; that failure is unrecoverable and the
operator has to supply the bucket id directly.
*/
func (c *Client) resolveBucketID(ctx context.Context, session Session, accountID string) (string, error) {
	if c.creds.BucketID != "" {
		return c.creds.BucketID, nil
	}

	listResponse := struct {
		Buckets []struct {
			BucketID   string `json:"bucketId"`
			BucketName string `json:"bucketName"`
		} `json:"buckets"`
	}{}

	err := c.apiCall(ctx, session, "b2_list_buckets", map[string]any{"accountId": accountID}, &listResponse)

	if err != nil {
		slog.Error("cannot list buckets. add bucket_id to the storage settings", "error", err)
		return "", ErrBucketIDRequired
	}

	for _, bucket := range listResponse.Buckets {
		if bucket.BucketName == c.creds.BucketName {
			return bucket.BucketID, nil
		}
	}

	return "", fmt.Errorf("bucket '%s' not found", c.creds.BucketName)
}

type uploadTarget struct {
	UploadURL          string `json:"uploadUrl"`
	AuthorizationToken string `json:"authorizationToken"`
}

func (c *Client) getUploadTarget(ctx context.Context, session Session) (uploadTarget, error) {
	var (
		err    error
		target uploadTarget
	)

	request := map[string]any{
		"bucketId": session.BucketID,
	}

	if err = c.apiCall(ctx, session, "b2_get_upload_url", request, &target); err != nil {
		return target, fmt.Errorf("error getting upload URL: %w", err)
	}

	return target, nil
}

func (c *Client) apiCall(ctx context.Context, session Session, operation string, requestBody any, responseBody any) error {
	var (
		err      error
		body     []byte
		response *http.Response
	)

	if body, err = json.Marshal(requestBody); err != nil {
		return fmt.Errorf("error encoding %s request: %w", operation, err)
	}

	endpoint := fmt.Sprintf("%s/b2api/v2/%s", session.APIURL, operation)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))

	if err != nil {
		return fmt.Errorf("error building %s request: %w", operation, err)
	}

	req.Header.Set("Authorization", session.Token)
	req.Header.Set("Content-Type", "application/json")

	if response, err = c.httpClient.Do(req); err != nil {
		return fmt.Errorf("error calling %s: %w", operation, err)
	}

	defer response.Body.Close()

	if err = checkResponse(response); err != nil {
		return fmt.Errorf("error calling %s: %w", operation, err)
	}

	if responseBody == nil {
		_, _ = io.Copy(io.Discard, response.Body)
		return nil
	}

	if err = json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("error decoding %s response: %w", operation, err)
	}

	return nil
}

func checkResponse(response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(response.Body)

	apiError := struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{}

	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Message != "" {
		return fmt.Errorf("%s (%s)", apiError.Message, apiError.Code)
	}

	return fmt.Errorf("unexpected status %s", response.Status)
}

/*
File name headers are percent-encoded per path segment. Slashes stay
as-is.
*/
func escapeKey(key string) string {
	segments := strings.Split(key, "/")

	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return strings.Join(segments, "/")
}
