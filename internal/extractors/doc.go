// Package extractors turns uploaded files into normalised records or
// text plus a structure label. One extractor per file format; the
// router picks by extension with a content sniff for ambiguous names.
package extractors
