/*
Package mpq is a decoder of Blizzard's MPQ archive container format:
opening archive files, decrypting and decompressing their internal hash
and block tables, resolving a virtual file name to its byte payload, and
aggregating several archives into one virtual filesystem with a defined
precedence order.

Information sources:

  - The_MoPaQ_Archive_Format: http://wiki.devklog.net/index.php?title=The_MoPaQ_Archive_Format
  - Zezula MPQ description: http://www.zezula.net/mpq.html
  - Stormlib: https://github.com/ladislav-zezula/StormLib

This package only reads archives; there is no write support.
*/
package mpq
