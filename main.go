package main

import (
	"fmt"

	_ "github.com/tidehook/servicecache/requestctx"
	_ "github.com/tidehook/servicecache/servicecache"
	_ "github.com/tidehook/servicecache/store"
)

func main() {
	fmt.Println("Hi")
}
