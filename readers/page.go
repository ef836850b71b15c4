package readers

// Page is the text and the tables extracted from one page of a document.
type Page struct {
	Number int
	Text   string
	Tables [][][]string
}

type PageReader interface {
	CanRead(path string) bool
	ReadPages(path string) ([]Page, error)
}
