// Command noticeboard serves and administers a shared noticeboard.
package main

func main() {
	Execute()
}
