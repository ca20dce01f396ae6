package processor

import (
	"context"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/internal/storage"
	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

/*
Design Principles
- Semantic fidelity over visual fidelity
- No inferred structure
- GitHub-Flavored Markdown compatibility

Each fed page is converted to Markdown, checked to parse as Markdown,
and persisted content-addressed through the storage sink.
*/

type MarkdownProcessor struct {
	metadataSink metadata.MetadataSink
	sink         storage.Sink
}

func NewMarkdownProcessor(
	metadataSink metadata.MetadataSink,
	sink storage.Sink,
) MarkdownProcessor {
	return MarkdownProcessor{
		metadataSink: metadataSink,
		sink:         sink,
	}
}

func (p *MarkdownProcessor) Init(ctx context.Context) failure.ClassifiedError {
	return nil
}

func (p *MarkdownProcessor) Feed(ctx context.Context, body []byte) failure.ClassifiedError {
	markdownDoc, err := convert(body)
	if err != nil {
		p.metadataSink.RecordError(
			time.Now(),
			"processor",
			"MarkdownProcessor.Feed",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{},
		)
		return err
	}

	if _, werr := p.sink.Write([]byte(markdownDoc)); werr != nil {
		// already recorded by the sink
		return werr
	}
	return nil
}

func (p *MarkdownProcessor) Close() error {
	return nil
}

// convert transforms a raw HTML body into markdown and verifies the
// result still parses as Markdown.
func convert(body []byte) (string, *ProcessorError) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	markdownDoc, err := conv.ConvertString(string(body))
	if err != nil {
		return "", &ProcessorError{
			Message: err.Error(),
			Cause:   ErrCauseConversionFailure,
		}
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	if doc := mdParser.Parse([]byte(markdownDoc)); doc == nil {
		return "", &ProcessorError{
			Message: "converted document does not parse as markdown",
			Cause:   ErrCauseConversionFailure,
		}
	}

	return markdownDoc, nil
}
