// Package dom is a small ordered-tree model for rendered document content: text, elements, comments, fragments and documents.
//
// It exists so that tree algorithms (see package visualdiff) can work on a closed, pointer-linked node type with predictable clone and equality semantics,
// independent of any particular parser. Conversion to and from golang.org/x/net/html is provided for input and output.
//
// Invariants:
//   - Tag names are lower case.
//   - Sibling and parent links are always consistent when trees are changed through AppendChild, InsertBefore and RemoveChild.
//   - Clone never shares attribute storage with the original.
package dom
