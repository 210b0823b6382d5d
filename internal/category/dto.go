package category

type CategoryResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}
