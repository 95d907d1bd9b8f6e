// The xmltv package writes TV listings in the XMLTV interchange format.
// It is a streaming writer: the header is emitted on creation, channels
// must all be written before the first programme, and Close terminates
// the document.

package xmltv

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

// TimeFormat is the XMLTV timestamp layout, local time with explicit UTC offset.
const TimeFormat = "20060102150405 -0700"

// Header describes the generator and the upstream source of the listings.
type Header struct {
	GeneratorName string
	GeneratorURL  string
	SourceName    string
	SourceURL     string
	Date          time.Time
}

// LangString is a text value carrying its language tag.
type LangString struct {
	Text string
	Lang string
}

// Icon is an image reference.
type Icon struct {
	Src string `xml:"src,attr"`
}

// Channel is one channel entry. DisplayNames keep the caller's order.
type Channel struct {
	ID           string
	DisplayNames []LangString
	Icon         string
}

// Credits holds the programme crew. Order within each slice is preserved.
type Credits struct {
	Directors  []string
	Actors     []string
	Writers    []string
	Presenters []string
}

// Programme is one broadcast. Start is mandatory, Stop optional.
type Programme struct {
	Channel     string
	Start       time.Time
	Stop        time.Time // zero value means absent
	Titles      []LangString
	SubTitles   []LangString
	Descs       []LangString
	Categories  []LangString
	Credits     Credits
	Rating      string
	Subtitles   bool // teletext subtitles available
	PrevShown   bool // rerun
}

// Writer emits an XMLTV document. Not safe for concurrent use.
type Writer struct {
	enc        *xml.Encoder
	w          io.Writer
	programmes bool
	closed     bool
}

type xmlDisplayName struct {
	XMLName xml.Name `xml:"display-name"`
	Lang    string   `xml:"lang,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type xmlChannel struct {
	XMLName      xml.Name         `xml:"channel"`
	ID           string           `xml:"id,attr"`
	DisplayNames []xmlDisplayName `xml:"display-name"`
	Icon         *Icon            `xml:"icon,omitempty"`
}

type xmlLang struct {
	Lang string `xml:"lang,attr,omitempty"`
	Text string `xml:",chardata"`
}

type xmlCreditMember struct {
	Text string `xml:",chardata"`
}

type xmlCredits struct {
	Directors  []xmlCreditMember `xml:"director,omitempty"`
	Actors     []xmlCreditMember `xml:"actor,omitempty"`
	Writers    []xmlCreditMember `xml:"writer,omitempty"`
	Presenters []xmlCreditMember `xml:"presenter,omitempty"`
}

type xmlRating struct {
	Value string `xml:"value"`
}

type xmlEmpty struct{}

type xmlProgramme struct {
	XMLName    xml.Name    `xml:"programme"`
	Start      string      `xml:"start,attr"`
	Stop       string      `xml:"stop,attr,omitempty"`
	Channel    string      `xml:"channel,attr"`
	Titles     []xmlLang   `xml:"title"`
	SubTitles  []xmlLang   `xml:"sub-title,omitempty"`
	Descs      []xmlLang   `xml:"desc,omitempty"`
	Credits    *xmlCredits `xml:"credits,omitempty"`
	Categories []xmlLang   `xml:"category,omitempty"`
	PrevShown  *xmlEmpty   `xml:"previously-shown,omitempty"`
	Subtitles  *xmlEmpty   `xml:"subtitles,omitempty"`
	Rating     *xmlRating  `xml:"rating,omitempty"`
}

// New creates a Writer and emits the document header.
func New(w io.Writer, h Header) (*Writer, error) {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return nil, fmt.Errorf("can't write XMLTV header: %w", err)
	}
	wr := &Writer{enc: xml.NewEncoder(w), w: w}
	wr.enc.Indent("", "  ")

	start := xml.StartElement{
		Name: xml.Name{Local: "tv"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "generator-info-name"}, Value: h.GeneratorName},
		},
	}
	if h.GeneratorURL != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "generator-info-url"}, Value: h.GeneratorURL})
	}
	if h.SourceName != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "source-info-name"}, Value: h.SourceName})
	}
	if h.SourceURL != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "source-info-url"}, Value: h.SourceURL})
	}
	if !h.Date.IsZero() {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "date"}, Value: h.Date.Format("20060102")})
	}
	if err := wr.enc.EncodeToken(start); err != nil {
		return nil, fmt.Errorf("can't write XMLTV header: %w", err)
	}
	return wr, nil
}

// WriteChannel emits one channel element. All channels must be written
// before the first programme.
func (w *Writer) WriteChannel(c Channel) error {
	if w.programmes {
		return fmt.Errorf("channel %q written after first programme", c.ID)
	}
	x := xmlChannel{ID: c.ID}
	for _, n := range c.DisplayNames {
		x.DisplayNames = append(x.DisplayNames, xmlDisplayName{Lang: n.Lang, Text: n.Text})
	}
	if c.Icon != "" {
		x.Icon = &Icon{Src: c.Icon}
	}
	if err := w.enc.Encode(x); err != nil {
		return fmt.Errorf("can't write channel %q: %w", c.ID, err)
	}
	return nil
}

// WriteProgramme emits one programme element. A programme without a start
// time is rejected.
func (w *Writer) WriteProgramme(p Programme) error {
	if p.Start.IsZero() {
		return fmt.Errorf("programme on %q has no start time", p.Channel)
	}
	w.programmes = true
	x := xmlProgramme{
		Start:   p.Start.Format(TimeFormat),
		Channel: p.Channel,
	}
	if !p.Stop.IsZero() {
		x.Stop = p.Stop.Format(TimeFormat)
	}
	for _, t := range p.Titles {
		x.Titles = append(x.Titles, xmlLang{Lang: t.Lang, Text: t.Text})
	}
	for _, t := range p.SubTitles {
		x.SubTitles = append(x.SubTitles, xmlLang{Lang: t.Lang, Text: t.Text})
	}
	for _, t := range p.Descs {
		x.Descs = append(x.Descs, xmlLang{Lang: t.Lang, Text: t.Text})
	}
	for _, t := range p.Categories {
		x.Categories = append(x.Categories, xmlLang{Lang: t.Lang, Text: t.Text})
	}
	if c := creditsElement(p.Credits); c != nil {
		x.Credits = c
	}
	if p.PrevShown {
		x.PrevShown = &xmlEmpty{}
	}
	if p.Subtitles {
		x.Subtitles = &xmlEmpty{}
	}
	if p.Rating != "" {
		x.Rating = &xmlRating{Value: p.Rating}
	}
	if err := w.enc.Encode(x); err != nil {
		return fmt.Errorf("can't write programme on %q: %w", p.Channel, err)
	}
	return nil
}

func creditsElement(c Credits) *xmlCredits {
	if len(c.Directors)+len(c.Actors)+len(c.Writers)+len(c.Presenters) == 0 {
		return nil
	}
	x := &xmlCredits{}
	for _, s := range c.Directors {
		x.Directors = append(x.Directors, xmlCreditMember{Text: s})
	}
	for _, s := range c.Actors {
		x.Actors = append(x.Actors, xmlCreditMember{Text: s})
	}
	for _, s := range c.Writers {
		x.Writers = append(x.Writers, xmlCreditMember{Text: s})
	}
	for _, s := range c.Presenters {
		x.Presenters = append(x.Presenters, xmlCreditMember{Text: s})
	}
	return x
}

// Close terminates the document. The Writer can't be used afterwards.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "tv"}}); err != nil {
		return fmt.Errorf("can't close XMLTV document: %w", err)
	}
	if err := w.enc.Flush(); err != nil {
		return fmt.Errorf("can't close XMLTV document: %w", err)
	}
	_, err := io.WriteString(w.w, "\n")
	return err
}
