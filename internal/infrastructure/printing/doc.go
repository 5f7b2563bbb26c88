// Package printing renders ticket receipts and product label sheets to PDF.
//
// Documents are produced from embedded html/template files and printed by a
// headless Chrome driven through chromedp. Chrome is started on the first
// render, so servers that never print never launch a browser.
package printing
