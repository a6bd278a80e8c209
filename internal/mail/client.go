package mail

import (
	"fmt"
	"net/textproto"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-sasl"

	"oauth-gateway/internal/common/errors"
	"oauth-gateway/internal/common/logging"
	"oauth-gateway/internal/config"
)

// Config represents IMAP connection configuration.
type Config struct {
	Host    string        `json:"host"`
	Port    int           `json:"port"`
	Folder  string        `json:"folder"`
	Timeout time.Duration `json:"timeout"`
}

// Client reads mail over IMAP using OAUTHBEARER authentication, so the
// account password never touches this process; a bearer token from the
// credential manager is all it needs.
type Client struct {
	config *Config
	client *client.Client
	logger logging.Logger
}

// Message is a fetched mail message with its extracted bodies.
type Message struct {
	SeqNum  uint32
	Subject string
	From    string
	Date    time.Time
	Content *Content
}

// NewClientFromConfig creates an IMAP client from the loaded gateway
// configuration.
func NewClientFromConfig(cfg *config.Config, logger logging.Logger) (*Client, error) {
	return NewClient(&Config{
		Host:   cfg.IMAPHost,
		Port:   cfg.IMAPPort,
		Folder: cfg.IMAPFolder,
	}, logger)
}

// NewClient creates an IMAP client. Connect must be called before any
// mailbox operation.
func NewClient(config *Config, logger logging.Logger) (*Client, error) {
	if config.Host == "" {
		return nil, errors.ConfigError("IMAP host is required")
	}
	if config.Port <= 0 {
		config.Port = 993
	}
	if config.Folder == "" {
		config.Folder = "INBOX"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &Client{config: config, logger: logger}, nil
}

// Connect dials the server over TLS and authenticates with the given
// bearer token for the account.
func (c *Client) Connect(username, accessToken string) error {
	if c.client != nil {
		_ = c.client.Logout()
		c.client = nil
	}

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	imapClient, err := client.DialTLS(addr, nil)
	if err != nil {
		return errors.ConnectionError(fmt.Sprintf("failed to connect to %s", addr), err)
	}
	imapClient.Timeout = c.config.Timeout

	saslClient := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
		Username: username,
		Token:    accessToken,
	})
	if err := imapClient.Authenticate(saslClient); err != nil {
		_ = imapClient.Logout()
		return errors.ConnectionError("OAUTHBEARER authentication failed", err)
	}

	c.client = imapClient
	c.logger.Info("IMAP connection established",
		logging.Field{Key: "host", Value: c.config.Host},
		logging.Field{Key: "username", Value: username})

	return nil
}

// Search selects the configured folder and returns the sequence numbers of
// messages matching the filter.
func (c *Client) Search(filter SearchFilter) ([]uint32, error) {
	if c.client == nil {
		return nil, errors.ConnectionError("not connected", nil)
	}

	// Compile the text form first: it validates the filter and is what
	// shows up in logs next to the server's response.
	criteriaText, err := BuildSearchCriteria(filter)
	if err != nil {
		return nil, err
	}

	criteria, err := searchCriteria(filter)
	if err != nil {
		return nil, err
	}

	if _, err := c.client.Select(c.config.Folder, false); err != nil {
		return nil, errors.ConnectionError(fmt.Sprintf("failed to select folder %s", c.config.Folder), err)
	}

	seqNums, err := c.client.Search(criteria)
	if err != nil {
		return nil, errors.ConnectionError("search failed", err)
	}

	c.logger.Debug("IMAP search completed",
		logging.Field{Key: "folder", Value: c.config.Folder},
		logging.Field{Key: "criteria", Value: criteriaText},
		logging.Field{Key: "matches", Value: len(seqNums)})

	return seqNums, nil
}

// Fetch retrieves the given messages with their envelopes and bodies.
func (c *Client) Fetch(seqNums []uint32) ([]*Message, error) {
	if c.client == nil {
		return nil, errors.ConnectionError("not connected", nil)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)

	bodySection, _ := imap.ParseBodySectionName("BODY[]")
	items := []imap.FetchItem{imap.FetchEnvelope, bodySection.FetchItem()}

	ch := make(chan *imap.Message, len(seqNums))
	done := make(chan error, 1)
	go func() {
		done <- c.client.Fetch(seqset, items, ch)
	}()

	var out []*Message
	for msg := range ch {
		m := &Message{SeqNum: msg.SeqNum}
		if msg.Envelope != nil {
			m.Subject = msg.Envelope.Subject
			m.Date = msg.Envelope.Date
			if len(msg.Envelope.From) > 0 {
				addr := msg.Envelope.From[0]
				m.From = fmt.Sprintf("%s@%s", addr.MailboxName, addr.HostName)
			}
		}
		if r := msg.GetBody(bodySection); r != nil {
			if content, err := ExtractContent(r); err == nil {
				m.Content = content
			}
		}
		out = append(out, m)
	}

	if err := <-done; err != nil {
		return nil, errors.ConnectionError("fetch failed", err)
	}
	return out, nil
}

// Close logs out and drops the connection.
func (c *Client) Close() error {
	if c.client != nil {
		err := c.client.Logout()
		c.client = nil
		return err
	}
	return nil
}

// searchCriteria converts the filter into the structured form the client
// library sends. Address lists become nested binary ORs folded left, the
// same shape BuildSearchCriteria prints.
func searchCriteria(filter SearchFilter) (*imap.SearchCriteria, error) {
	criteria := imap.NewSearchCriteria()

	if filter.UnseenOnly {
		criteria.WithoutFlags = []string{imap.SeenFlag}
	}

	sinceText, err := sinceClause(filter.Since, filter.SinceText)
	if err != nil {
		return nil, err
	}
	if sinceText != "" {
		// A one digit day parses fine with the padded layout.
		since, err := time.Parse(imapDateLayout, sinceText)
		if err != nil {
			return nil, errors.InvalidDateFormatError(sinceText)
		}
		criteria.Since = since
	}

	if len(filter.Senders) > 0 {
		folded, err := foldAddresses("From", filter.Senders)
		if err != nil {
			return nil, err
		}
		mergeCriteria(criteria, folded)
	}

	if len(filter.Receivers) > 0 {
		folded, err := foldAddresses("To", filter.Receivers)
		if err != nil {
			return nil, err
		}
		mergeCriteria(criteria, folded)
	}

	return criteria, nil
}

// foldAddresses builds the nested binary OR tree for a header field.
func foldAddresses(field string, addrs []string) (*imap.SearchCriteria, error) {
	valid := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			valid = append(valid, trimmed)
		}
	}
	if len(valid) == 0 {
		return nil, errors.NoValidAddressesError(strings.ToLower(field))
	}

	acc := headerCriteria(field, valid[0])
	for _, addr := range valid[1:] {
		acc = &imap.SearchCriteria{
			Or: [][2]*imap.SearchCriteria{{acc, headerCriteria(field, addr)}},
		}
	}
	return acc, nil
}

func headerCriteria(field, value string) *imap.SearchCriteria {
	return &imap.SearchCriteria{
		Header: textproto.MIMEHeader{field: {value}},
	}
}

// mergeCriteria ANDs the folded tree into the top-level criteria. A plain
// header match stays a header match; an OR tree joins the Or list.
func mergeCriteria(dst, src *imap.SearchCriteria) {
	if len(src.Or) > 0 {
		dst.Or = append(dst.Or, src.Or...)
		return
	}
	for field, values := range src.Header {
		for _, v := range values {
			dst.Header.Add(field, v)
		}
	}
}
