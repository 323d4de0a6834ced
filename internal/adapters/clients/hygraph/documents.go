package hygraph

// GraphQL documents. Fragments are appended to the operations that spread them.

const healthQuery = `query Health { __typename }`

const wordFields = `
fragment WordFields on WordItem {
  id
  item
  meaning
  isKnown
  isCollected
  viewTime
  createdAt
  updatedAt
  tags { id tagName }
  examples { id sentence meaning }
  images { id url fileName mimeType }
}`

const quizFields = `
fragment QuizFields on Quiz {
  id
  quizContent
  correctAnswer
  isCollected
  viewTime
  quizOptions { id quizOptionText optionImage { url } }
  category { id categoryName }
  quizImages { url }
}`

const pageInfoFields = `pageInfo { hasNextPage endCursor } aggregate { count }`

// Assets.

const createAssetMutation = `
mutation CreateAsset($data: AssetCreateInput!) {
  createAsset(data: $data) {
    id
    url
    upload {
      status
      expiresAt
      requestPostData { url date key signature algorithm policy credential securityToken }
    }
  }
}`

const publishAssetMutation = `
mutation PublishAsset($id: ID!) {
  publishAsset(where: { id: $id }) { id url fileName mimeType }
}`

const updateAssetMutation = `
mutation UpdateAsset($id: ID!, $data: AssetUpdateInput!) {
  updateAsset(where: { id: $id }, data: $data) { id }
}`

const deleteAssetMutation = `
mutation DeleteAsset($id: ID!) {
  deleteAsset(where: { id: $id }) { id }
}`

// Tags.

const tagsQuery = `
query ListTags($first: Int!, $after: String) {
  tagsConnection(first: $first, after: $after) {
    edges { node { id tagName createdAt updatedAt wordItem { id item } } }
    ` + pageInfoFields + `
  }
}`

const collectedTagsQuery = `
query ListCollectedTags($first: Int!, $after: String) {
  tagsConnection(first: $first, after: $after, where: { wordItem_some: { isCollected: true } }) {
    edges { node { id tagName createdAt updatedAt wordItem(where: { isCollected: true }) { id item } } }
    ` + pageInfoFields + `
  }
}`

// Words.

const wordsByTagQuery = `
query WordsByTag($tagId: ID!, $first: Int!, $after: String) {
  tag(where: { id: $tagId }) { id }
  wordItemsConnection(first: $first, after: $after, where: { tags_some: { id: $tagId } }) {
    edges { node { ...WordFields } }
    ` + pageInfoFields + `
  }
}` + wordFields

const collectedWordsByTagQuery = `
query CollectedWordsByTag($tagId: ID!, $first: Int!, $after: String) {
  tag(where: { id: $tagId }) { id }
  wordItemsConnection(first: $first, after: $after, where: { tags_some: { id: $tagId }, isCollected: true }) {
    edges { node { ...WordFields } }
    ` + pageInfoFields + `
  }
}` + wordFields

const wordItemQuery = `
query WordItem($id: ID!) {
  wordItem(where: { id: $id }) { ...WordFields }
}` + wordFields

const countWordsQuery = `
query CountWords($tagId: ID!) {
  tag(where: { id: $tagId }) { id }
  total: wordItemsConnection(where: { tags_some: { id: $tagId } }) { aggregate { count } }
  known: wordItemsConnection(where: { tags_some: { id: $tagId }, isKnown: true }) { aggregate { count } }
  collected: wordItemsConnection(where: { tags_some: { id: $tagId }, isCollected: true }) { aggregate { count } }
}`

const createWordItemMutation = `
mutation CreateWordItem($data: WordItemCreateInput!) {
  createWordItem(data: $data) { ...WordFields }
}` + wordFields

const publishWordItemMutation = `
mutation PublishWordItem($id: ID!) {
  publishWordItem(where: { id: $id }) { ...WordFields }
}` + wordFields

const deleteWordItemMutation = `
mutation DeleteWordItem($id: ID!) {
  deleteWordItem(where: { id: $id }) { id }
}`

const updateWordItemMutation = `
mutation UpdateWordItem($id: ID!, $data: WordItemUpdateInput!) {
  updateWordItem(where: { id: $id }, data: $data) { ...WordFields }
}` + wordFields

// View times are pushed one at a time so concurrent viewers never
// overwrite each other's history.
const appendWordViewMutation = `
mutation AppendWordView($id: ID!, $viewTime: String!) {
  updateWordItem(where: { id: $id }, data: { viewTime: { push: $viewTime } }) { id }
}`

// Categories and quizzes.

const categoriesQuery = `
query ListCategories($first: Int!, $after: String) {
  categoriesConnection(first: $first, after: $after) {
    edges { node { id categoryName } }
    ` + pageInfoFields + `
  }
}`

const incorrectCategoriesQuery = `
query CategoriesWithIncorrectQuizzes($first: Int!, $after: String) {
  categoriesConnection(first: $first, after: $after, where: { quiz_some: { isCollected: true } }) {
    edges { node { id categoryName quiz(where: { isCollected: true }) { ...QuizFields } } }
    ` + pageInfoFields + `
  }
}` + quizFields

const quizzesByCategoryQuery = `
query QuizzesByCategory($categoryId: ID!, $first: Int!, $after: String) {
  category(where: { id: $categoryId }) { id }
  quizzesConnection(first: $first, after: $after, where: { category_some: { id: $categoryId } }) {
    edges { node { ...QuizFields } }
    ` + pageInfoFields + `
  }
}` + quizFields

const collectedQuizzesByCategoryQuery = `
query CollectedQuizzesByCategory($categoryId: ID!, $first: Int!, $after: String) {
  category(where: { id: $categoryId }) { id }
  quizzesConnection(first: $first, after: $after, where: { category_some: { id: $categoryId }, isCollected: true }) {
    edges { node { ...QuizFields } }
    ` + pageInfoFields + `
  }
}` + quizFields

const quizQuery = `
query Quiz($id: ID!) {
  quiz(where: { id: $id }) { ...QuizFields }
}` + quizFields

const createQuizOptionMutation = `
mutation CreateQuizOption($data: QuizOptionCreateInput!) {
  createQuizOption(data: $data) { id quizOptionText optionImage { url } }
}`

const publishQuizOptionMutation = `
mutation PublishQuizOption($id: ID!) {
  publishQuizOption(where: { id: $id }) { id }
}`

const deleteQuizOptionMutation = `
mutation DeleteQuizOption($id: ID!) {
  deleteQuizOption(where: { id: $id }) { id }
}`

const createQuizMutation = `
mutation CreateQuiz($data: QuizCreateInput!) {
  createQuiz(data: $data) { ...QuizFields }
}` + quizFields

const publishQuizMutation = `
mutation PublishQuiz($id: ID!) {
  publishQuiz(where: { id: $id }) { ...QuizFields }
}` + quizFields

const deleteQuizMutation = `
mutation DeleteQuiz($id: ID!) {
  deleteQuiz(where: { id: $id }) { id }
}`

const setQuizCollectedMutation = `
mutation SetQuizCollected($id: ID!, $isCollected: Boolean!) {
  updateQuiz(where: { id: $id }, data: { isCollected: $isCollected }) { id isCollected }
}`

const appendQuizViewMutation = `
mutation AppendQuizView($id: ID!, $viewTime: String!) {
  updateQuiz(where: { id: $id }, data: { viewTime: { push: $viewTime } }) { id }
}`
