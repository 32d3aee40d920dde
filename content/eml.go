package content

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/haybale/chaff/types"
)

// baseDate anchors the deterministic sent-date sequence.
var baseDate = time.Date(2021, time.March, 1, 9, 0, 0, 0, time.UTC)

// SentDate returns the deterministic sent date for a document index.
func SentDate(index int64) time.Time {
	return baseDate.Add(time.Duration(index) * 17 * time.Minute)
}

// EmailFrom returns the deterministic sender address for a document index.
// Load-file writers reuse this so metadata columns match the generated EML.
func EmailFrom(index int64) string {
	return fmt.Sprintf("custodian%02d@example.com", index%10)
}

// EmailTo returns the deterministic recipient address for a document index.
func EmailTo(index int64) string {
	return fmt.Sprintf("recipient%02d@example.com", (index+3)%10)
}

// EmailSubject returns the deterministic subject line for a document.
func EmailSubject(item types.WorkItem) string {
	return fmt.Sprintf("Re: matter %s", item.DocID())
}

// EMLBuilder produces RFC 5322 email stubs, as multipart MIME when an
// attachment is requested.
type EMLBuilder struct{}

// Generate implements Builder.
func (EMLBuilder) Generate(item types.WorkItem, req *types.GenerationRequest) (Result, error) {
	pages := pageCount(item.Index)
	from := EmailFrom(item.Index)
	to := EmailTo(item.Index)
	subject := EmailSubject(item)
	date := SentDate(item.Index).Format(time.RFC1123Z)

	body := &bytes.Buffer{}
	for p := 0; p < pages; p++ {
		body.Write(paragraph(item.Index+int64(p), 3))
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", date)
	fmt.Fprintf(&buf, "Message-ID: <%s@example.com>\r\n", item.DocID())
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	var attachment *types.Attachment
	if req != nil && req.WithAttachments {
		attachment = &types.Attachment{
			Name: fmt.Sprintf("attachment_%08d.txt", item.Index),
			Data: paragraph(item.Index+1000, 5),
		}
		boundary := fmt.Sprintf("----chaff-%08d", item.Index)
		fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.Write(body.Bytes())
		fmt.Fprintf(&buf, "\r\n--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: application/octet-stream; name=%q\r\n", attachment.Name)
		fmt.Fprintf(&buf, "Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", attachment.Name)
		buf.WriteString(base64.StdEncoding.EncodeToString(attachment.Data))
		fmt.Fprintf(&buf, "\r\n--%s--\r\n", boundary)
	} else {
		fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.Write(body.Bytes())
	}

	return Result{Content: buf.Bytes(), Attachment: attachment, PageCount: pages}, nil
}

// TIFFBuilder produces single-strip TIFF stubs: a little-endian header and
// one IFD per page worth of filler. Downstream tools only need the magic
// bytes and a plausible size.
type TIFFBuilder struct{}

// Generate implements Builder.
func (TIFFBuilder) Generate(item types.WorkItem, _ *types.GenerationRequest) (Result, error) {
	pages := pageCount(item.Index)

	var buf bytes.Buffer
	// Little-endian TIFF magic: "II", 42, first IFD offset 8.
	buf.Write([]byte{0x49, 0x49, 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00})
	for p := 0; p < pages; p++ {
		buf.Write(paragraph(item.Index+int64(p), 2))
	}
	return Result{Content: buf.Bytes(), PageCount: pages}, nil
}
