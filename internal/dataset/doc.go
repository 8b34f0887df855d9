// Package dataset is the table adapter around the filter pipeline.
//
// A Table is a header plus string rows read from delimited text. ReadCSV
// tolerates a leading byte-order mark; WriteCSV replaces its target
// atomically. ForEachRow runs a predicate over every row on a bounded worker
// pool and returns the rows it kept, in their original order.
package dataset
